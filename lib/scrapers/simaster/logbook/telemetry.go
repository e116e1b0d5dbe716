package logbook

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("scrapers/simaster/logbook")
