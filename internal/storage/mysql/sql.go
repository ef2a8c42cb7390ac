package mysql

const insertRunSQL = `
INSERT INTO seed_runs
  (run_id, database_id, state, started_at, finished_at, summary)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  state       = VALUES(state),
  finished_at = VALUES(finished_at),
  summary     = VALUES(summary)
`

const insertStageSQL = `
INSERT INTO seed_stage_results
  (run_id, collection, planned, created, failed, duration_ms)
VALUES
  (?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  planned     = VALUES(planned),
  created     = VALUES(created),
  failed      = VALUES(failed),
  duration_ms = VALUES(duration_ms)
`

const deleteFailuresSQL = `DELETE FROM seed_failures WHERE run_id = ?`

const insertFailureSQL = `
INSERT INTO seed_failures (run_id, collection, phase, item_index, error)
VALUES (?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const recentRunsSQL = `
SELECT run_id, database_id, state, started_at, finished_at, summary
FROM seed_runs
WHERE database_id = ?
ORDER BY started_at DESC
LIMIT ?
`

const stageResultsSQL = `
SELECT collection, planned, created, failed, duration_ms
FROM seed_stage_results
WHERE run_id = ?
ORDER BY FIELD(collection, 'agents', 'reviews', 'galleries', 'properties')
`

const failuresSQL = `
SELECT collection, phase, item_index, error
FROM seed_failures
WHERE run_id = ?
ORDER BY id
`
