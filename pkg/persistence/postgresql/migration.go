package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			-- Reference tables
			CREATE TABLE users (
				id VARCHAR(255) PRIMARY KEY,
				username VARCHAR(255) NOT NULL DEFAULT '',
				first_name VARCHAR(255) NOT NULL DEFAULT '',
				last_name VARCHAR(255) NOT NULL DEFAULT '',
				code_gestionnaire VARCHAR(64) NOT NULL DEFAULT '',
				role VARCHAR(64) NOT NULL DEFAULT ''
			);

			CREATE TABLE agencies (
				id VARCHAR(255) PRIMARY KEY,
				label VARCHAR(255) NOT NULL,
				code VARCHAR(64) NOT NULL DEFAULT ''
			);

			CREATE TABLE metiers (
				id VARCHAR(255) PRIMARY KEY,
				label VARCHAR(255) NOT NULL,
				code VARCHAR(64) NOT NULL DEFAULT ''
			);

			CREATE TABLE intervention_statuses (
				id VARCHAR(255) PRIMARY KEY,
				code VARCHAR(64) NOT NULL,
				label VARCHAR(255) NOT NULL,
				color VARCHAR(32) NOT NULL DEFAULT ''
			);

			CREATE UNIQUE INDEX idx_intervention_statuses_code ON intervention_statuses(UPPER(code));

			CREATE TABLE artisan_statuses (
				id VARCHAR(255) PRIMARY KEY,
				code VARCHAR(64) NOT NULL,
				label VARCHAR(255) NOT NULL,
				color VARCHAR(32) NOT NULL DEFAULT ''
			);
		`,
		2: `
			-- Intervention rows
			CREATE TABLE interventions (
				id UUID PRIMARY KEY,
				id_intervention VARCHAR(255) NOT NULL DEFAULT '',
				titre VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				statut_id VARCHAR(255),
				statut VARCHAR(64) NOT NULL DEFAULT '',
				user_id VARCHAR(255),
				agence_id VARCHAR(255),
				metier_id VARCHAR(255),
				artisan_id VARCHAR(255),
				facture_id VARCHAR(255),
				proprietaire_id VARCHAR(255),
				devis_id VARCHAR(255),
				commentaire TEXT,
				date_prevue VARCHAR(32),
				metadata JSONB,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_interventions_statut ON interventions(statut);
			CREATE INDEX idx_interventions_statut_id ON interventions(statut_id);
			CREATE INDEX idx_interventions_created_at ON interventions(created_at);
		`,
		3: `
			-- Billing ledger. usage_events is append-only; billing_state is
			-- written exclusively by the apply_usage_event trigger so the
			-- balance arithmetic is serialized inside the database.
			CREATE TABLE usage_events (
				id UUID PRIMARY KEY,
				delta BIGINT NOT NULL CHECK (delta <> 0),
				reason VARCHAR(255) NOT NULL DEFAULT '',
				tier VARCHAR(64) NOT NULL DEFAULT '',
				tokens BIGINT NOT NULL DEFAULT 0,
				cost_cents BIGINT NOT NULL DEFAULT 0,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX idx_usage_events_tier ON usage_events(tier);
			CREATE INDEX idx_usage_events_created_at ON usage_events(created_at);

			CREATE TABLE billing_state (
				singleton BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
				plan VARCHAR(64) NOT NULL DEFAULT 'starter',
				status VARCHAR(64) NOT NULL DEFAULT 'active',
				requests_remaining BIGINT NOT NULL DEFAULT 500,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE OR REPLACE FUNCTION apply_usage_event() RETURNS TRIGGER AS $$
			BEGIN
				INSERT INTO billing_state (singleton) VALUES (TRUE)
				ON CONFLICT (singleton) DO NOTHING;

				UPDATE billing_state
				SET requests_remaining = LEAST(1000000, GREATEST(0, requests_remaining + NEW.delta)),
				    updated_at = NOW()
				WHERE singleton;

				RETURN NEW;
			END;
			$$ LANGUAGE plpgsql;

			CREATE TRIGGER usage_events_apply
				AFTER INSERT ON usage_events
				FOR EACH ROW
				EXECUTE FUNCTION apply_usage_event();
		`,
	}
}
