package difficultymanager

import "github.com/ulordnet/ulordd/infrastructure/logger"

var log = logger.RegisterSubSystem("DIFF")
