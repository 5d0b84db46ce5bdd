package main

import "github.com/gethiox/padmacro/internal/pkg/logger"

var log = logger.GetLogger()
