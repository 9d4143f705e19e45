package app

import (
	"github.com/ulordnet/ulordd/infrastructure/logger"
	"github.com/ulordnet/ulordd/util/panics"
)

var log = logger.RegisterSubSystem("ULRD")
var spawn = panics.GoroutineWrapperFunc(log)
