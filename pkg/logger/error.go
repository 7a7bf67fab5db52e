package logger

import (
	"fmt"
	"log/slog"

	"github.com/moonShotMAGAX1/presale-ledger/pkg/logger/slogx"
)

// errorAttrReplacer expands error attributes with the verbose (%+v) rendering
// so wrapped cockroachdb/errors chains keep their context in the output.
func errorAttrReplacer(groups []string, attr slog.Attr) slog.Attr {
	if len(groups) == 0 && (attr.Key == slogx.ErrorKey || attr.Key == "err") {
		if err, ok := attr.Value.Any().(error); ok && err != nil {
			return slog.Group(attr.Key,
				slog.String("message", err.Error()),
				slog.String("verbose", fmt.Sprintf("%+v", err)),
			)
		}
	}
	return attr
}
