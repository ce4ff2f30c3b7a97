// Package assets embeds the files shipped inside the binaries: SQL migrations and email templates.
package assets

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed templates/email/*
var EmailTemplates embed.FS

const (
	MigrationsDir     = "migrations"
	EmailTemplatesDir = "templates/email"
)
