package postgres

var schema = []string{
	`CREATE TABLE IF NOT EXISTS calculation_runs (
		id            BIGSERIAL PRIMARY KEY,
		session_id    TEXT NOT NULL,
		config        JSONB NOT NULL,
		summary       JSONB NOT NULL,
		excel_summary JSONB NOT NULL,
		total_items   INTEGER NOT NULL DEFAULT 0,
		failed_items  INTEGER NOT NULL DEFAULT 0,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS calculation_results (
		run_id                  BIGINT NOT NULL REFERENCES calculation_runs(id) ON DELETE CASCADE,
		position                INTEGER NOT NULL,
		item_id                 TEXT NOT NULL,
		cycle_stock             DOUBLE PRECISION NOT NULL,
		safety_stock            DOUBLE PRECISION NOT NULL,
		target_safety_stock     DOUBLE PRECISION NOT NULL,
		in_transit_stock        DOUBLE PRECISION NOT NULL,
		total_target_stock      DOUBLE PRECISION NOT NULL,
		total_actual_stock      DOUBLE PRECISION NOT NULL,
		savings_potential       DOUBLE PRECISION NOT NULL,
		service_level           DOUBLE PRECISION NOT NULL,
		reorder_point           DOUBLE PRECISION NOT NULL,
		economic_order_quantity DOUBLE PRECISION NOT NULL,
		safety_factor_k         DOUBLE PRECISION NOT NULL,
		status                  TEXT NOT NULL,
		failure                 TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_calculation_runs_session ON calculation_runs (session_id, created_at DESC)`,
}
