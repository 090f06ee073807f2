// Package logfields keeps structured log keys consistent across packages.
package logfields

import "log/slog"

// Canonical log field names.
const (
	KeyRunID      = "run_id"
	KeyUnit       = "unit"
	KeyFamily     = "family"
	KeyHref       = "href"
	KeyURL        = "url"
	KeyLine       = "line"
	KeyPath       = "path"
	KeySubfolder  = "subfolder"
	KeySource     = "source"
	KeyStage      = "stage"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Unit(name string) slog.Attr       { return slog.String(KeyUnit, name) }
func Family(f string) slog.Attr        { return slog.String(KeyFamily, f) }
func Href(h string) slog.Attr          { return slog.String(KeyHref, h) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Line(n int) slog.Attr             { return slog.Int(KeyLine, n) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Subfolder(s string) slog.Attr     { return slog.String(KeySubfolder, s) }
func Source(s string) slog.Attr        { return slog.String(KeySource, s) }
func Stage(name string) slog.Attr      { return slog.String(KeyStage, name) }
func Count(n int) slog.Attr            { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
