package sheets

import (
	"context"
)

// Ports for outbound adapters.
type (
	// RowAppender appends one row to the end of a tab.
	RowAppender interface {
		AppendRow(ctx context.Context, tab string, row []any) error
	}

	// TabEnsurer creates missing tabs and writes their header row.
	TabEnsurer interface {
		EnsureTabs(ctx context.Context, headers map[string][]any) error
	}

	Journal interface {
		RowAppender
		TabEnsurer
	}
)
