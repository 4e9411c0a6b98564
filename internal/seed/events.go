package seed

// TopicSample carries the synthetic backfill as a []models.SeriesPoint
// batch. The detection pipeline treats the topic as a synthetic source.
const TopicSample = "seed.sample"
