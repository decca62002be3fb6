package invoice

import (
	"github.com/vendorly/invoicedesk/internal/invoice/repository"
	"github.com/vendorly/invoicedesk/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
