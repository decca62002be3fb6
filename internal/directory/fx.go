package directory

import (
	"github.com/vendorly/invoicedesk/internal/directory/repository"
	"github.com/vendorly/invoicedesk/internal/directory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("directory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
