package kkn

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("services/kkn")
