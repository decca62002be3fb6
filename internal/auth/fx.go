package auth

import (
	"github.com/vendorly/invoicedesk/internal/auth/repository"
	"github.com/vendorly/invoicedesk/internal/auth/service"
	"github.com/vendorly/invoicedesk/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
