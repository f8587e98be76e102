package postgres

// SQL for work record and monthly summary storage.

const (
	recordColumns = `
			id, company_id, user_id, distributor_id, distributor_name,
			total_pallets, items, work_date, work_time, status, notes,
			created_at, updated_at, created_by, created_by_name, updated_by`

	// querySelectRecordForUpdate locks one record for the rest of the transaction.
	querySelectRecordForUpdate = `
		SELECT` + recordColumns + `
		FROM work_records
		WHERE company_id = $1 AND id = $2
		FOR UPDATE
	`

	queryFindRecord = `
		SELECT` + recordColumns + `
		FROM work_records
		WHERE company_id = $1 AND id = $2
	`

	// queryInsertRecord affects no row for an existing (company_id, id).
	queryInsertRecord = `
		INSERT INTO work_records (` + recordColumns + `
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (company_id, id) DO NOTHING
	`

	// queryUpdateRecord keeps id, company_id, created_* and the insertion sequence.
	queryUpdateRecord = `
		UPDATE work_records
		SET user_id = $3,
			distributor_id = $4,
			distributor_name = $5,
			total_pallets = $6,
			items = $7,
			work_date = $8,
			work_time = $9,
			status = $10,
			notes = $11,
			updated_at = $12,
			updated_by = $13
		WHERE company_id = $1 AND id = $2
	`

	queryDeleteRecord = `DELETE FROM work_records WHERE company_id = $1 AND id = $2`

	// queryListMonthRecords returns a bucket's records in insertion order.
	queryListMonthRecords = `
		SELECT` + recordColumns + `
		FROM work_records
		WHERE company_id = $1
		  AND work_date >= $2
		  AND work_date <= $3
		ORDER BY seq ASC
	`

	querySelectSummaryForUpdate = `
		SELECT document
		FROM monthly_summaries
		WHERE company_id = $1 AND year = $2 AND month = $3
		FOR UPDATE
	`

	queryFindSummary = `
		SELECT document
		FROM monthly_summaries
		WHERE company_id = $1 AND year = $2 AND month = $3
	`

	queryUpsertSummary = `
		INSERT INTO monthly_summaries (id, company_id, year, month, document, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id, year, month)
		DO UPDATE SET
			document   = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at
	`

	// queryListBuckets unions buckets with records and buckets with a stored summary.
	// $1/$2 bound the work dates, $3/$4 the month index (year*12 + month - 1).
	queryListBuckets = `
		SELECT company_id, year, month FROM (
			SELECT DISTINCT
				company_id,
				EXTRACT(YEAR FROM work_date)::int AS year,
				EXTRACT(MONTH FROM work_date)::int AS month
			FROM work_records
			WHERE work_date >= $1 AND work_date <= $2
			UNION
			SELECT company_id, year, month
			FROM monthly_summaries
			WHERE (year * 12 + month - 1) BETWEEN $3 AND $4
		) buckets
		ORDER BY company_id, year, month
	`

	querySchemaTables = `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_name IN ('work_records', 'monthly_summaries')
	`
)
