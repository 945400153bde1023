// Package domain describes the printable permit issued for an approved application.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// Render returns the permit as a standalone HTML page.
	Render(ctx context.Context, applicationID snowflake.ID) (string, error)
}
