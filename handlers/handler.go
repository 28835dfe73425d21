package handlers

import (
	"github.com/uptrace/bun"

	"github.com/padraicbc/dogapi/pipeline"
)

// Handler holds shared dependencies used by all route handlers.
type Handler struct {
	db     *bun.DB
	deps   pipeline.Deps
	JWTKey []byte
}

// New creates a Handler with the given database connection, pipeline
// dependencies and JWT signing key.
func New(db *bun.DB, deps pipeline.Deps, jwtKey []byte) *Handler {
	return &Handler{db: db, deps: deps, JWTKey: jwtKey}
}
