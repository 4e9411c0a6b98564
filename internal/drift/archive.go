package drift

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/driftscope/driftscope/pkg/models"
)

// encodePoints packs a chunk of points into a snappy-compressed JSON blob
// for cold storage in drift_point_archive.
func encodePoints(points []models.SeriesPoint) ([]byte, error) {
	raw, err := json.Marshal(points)
	if err != nil {
		return nil, fmt.Errorf("marshal archive chunk: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// decodePoints unpacks a snappy archive blob back into points.
func decodePoints(blob []byte) ([]models.SeriesPoint, error) {
	raw, err := snappy.Decode(nil, blob)
	if err != nil {
		return nil, fmt.Errorf("decompress archive chunk: %w", err)
	}
	var points []models.SeriesPoint
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, fmt.Errorf("unmarshal archive chunk: %w", err)
	}
	return points, nil
}
