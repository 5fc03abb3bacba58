package postgres

// SQL queries for indicator documents, the reduce index and the change log.

const (
	querySchemaTables = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name IN ('indicator_documents', 'indicator_values', 'source_changes', 'feed_checkpoints')
	`

	querySelectIndicator = `SELECT document FROM indicator_documents WHERE id = $1`

	// queryUpsertIndicator replaces the whole document; documents are never merged.
	queryUpsertIndicator = `
		INSERT INTO indicator_documents (id, indicator_type, source_id, document, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			indicator_type = EXCLUDED.indicator_type,
			source_id      = EXCLUDED.source_id,
			document       = EXCLUDED.document,
			updated_at     = EXCLUDED.updated_at
	`

	queryDeleteIndicatorValues = `DELETE FROM indicator_values WHERE doc_id = $1`

	queryInsertIndicatorValue = `
		INSERT INTO indicator_values (
			doc_id, indicator_type, group_key, calculator, emitter, day, value, group_by, seq
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	// queryReduceDated computes every reduce operator over an inclusive day range.
	queryReduceDated = `
		SELECT COUNT(*), COALESCE(SUM(value), 0), MIN(value), MAX(value), COALESCE(SUM(value * value), 0)
		FROM indicator_values
		WHERE indicator_type = $1
		  AND group_key = $2
		  AND calculator = $3
		  AND emitter = $4
		  AND day >= $5
		  AND day <= $6
	`

	queryReduceNull = `
		SELECT COUNT(*), COALESCE(SUM(value), 0), MIN(value), MAX(value), COALESCE(SUM(value * value), 0)
		FROM indicator_values
		WHERE indicator_type = $1
		  AND group_key = $2
		  AND calculator = $3
		  AND emitter = $4
		  AND day IS NULL
	`

	queryIDsDatedAsc = `
		SELECT doc_id
		FROM indicator_values
		WHERE indicator_type = $1
		  AND group_key = $2
		  AND calculator = $3
		  AND emitter = $4
		  AND day >= $5
		  AND day <= $6
		ORDER BY day ASC, doc_id ASC, seq ASC
	`

	queryIDsDatedDesc = `
		SELECT doc_id
		FROM indicator_values
		WHERE indicator_type = $1
		  AND group_key = $2
		  AND calculator = $3
		  AND emitter = $4
		  AND day >= $5
		  AND day <= $6
		ORDER BY day DESC, doc_id DESC, seq DESC
	`

	queryIDsNull = `
		SELECT doc_id
		FROM indicator_values
		WHERE indicator_type = $1
		  AND group_key = $2
		  AND calculator = $3
		  AND emitter = $4
		  AND day IS NULL
		ORDER BY doc_id ASC, seq ASC
	`

	// queryAppendChange returns no rows (sql.ErrNoRows) for a duplicate change id.
	queryAppendChange = `
		INSERT INTO source_changes (id, source_id, doc_type, domain, data, received_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
		RETURNING ingest_seq
	`

	queryRetrieveChangesAfterCursor = `
		SELECT id, source_id, doc_type, domain, data, received_at, ingest_seq
		FROM source_changes
		WHERE ingest_seq > $1
		ORDER BY ingest_seq ASC
		LIMIT $2
	`

	queryReadCheckpoint = `SELECT checkpoint_cursor FROM feed_checkpoints WHERE feed = $1`

	// queryWriteCheckpoint only ever moves a feed's cursor forward.
	queryWriteCheckpoint = `
		INSERT INTO feed_checkpoints (feed, checkpoint_cursor, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (feed) DO UPDATE SET
			checkpoint_cursor = EXCLUDED.checkpoint_cursor,
			updated_at        = EXCLUDED.updated_at
		WHERE feed_checkpoints.checkpoint_cursor < EXCLUDED.checkpoint_cursor
	`
)
