package db

// SchemaSQL creates the tables the repositories work on. Production databases are
// provisioned outside the service, the integration tests apply it to a fresh container.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS collaboration (
	id           TEXT PRIMARY KEY,
	type         TEXT NOT NULL,
	title        TEXT NOT NULL,
	full_name    TEXT NOT NULL,
	organization TEXT,
	description  TEXT NOT NULL,
	link         TEXT,
	status       TEXT NOT NULL DEFAULT 'PENDING',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS post (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	slug       TEXT NOT NULL UNIQUE,
	excerpt    TEXT,
	body       TEXT NOT NULL,
	image_url  TEXT,
	tags       TEXT[] NOT NULL DEFAULT '{}',
	published  BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS news (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	slug         TEXT NOT NULL UNIQUE,
	summary      TEXT,
	body         TEXT NOT NULL,
	published_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	published    BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS subscriber (
	id         TEXT PRIMARY KEY,
	email      TEXT NOT NULL UNIQUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
