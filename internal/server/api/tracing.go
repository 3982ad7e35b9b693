// Copyright (C) 2026 the quixsi maintainers
// See root-dir/LICENSE for more information

package api

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/quixsi/muster/internal/server/api")
