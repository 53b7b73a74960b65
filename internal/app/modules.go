package app

import (
	"github.com/specialistvlad/actiongrid/internal/registry"
	"github.com/specialistvlad/actiongrid/modules/env_vars"
	"github.com/specialistvlad/actiongrid/modules/fail"
	"github.com/specialistvlad/actiongrid/modules/print"
	"github.com/specialistvlad/actiongrid/modules/prompt"
	"github.com/specialistvlad/actiongrid/modules/sleep"
	"github.com/specialistvlad/actiongrid/modules/store"
)

// coreModules is the definitive list of all modules that are compiled into
// the actiongrid binary.
var coreModules = []registry.Module{
	&env_vars.Module{},
	&fail.Module{},
	&print.Module{},
	&prompt.Module{},
	&sleep.Module{},
	&store.Module{},
}
