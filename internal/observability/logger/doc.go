// Package logger expone un logger Zap singleton con scoping por contexto.
//
// Inicialización (una vez en main.go):
//
//	logger.Init(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
//	defer logger.Sync()
//
// En controllers/services:
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("Provision"))
//	log.Info("user provisioned", logger.UserID(id), logger.TenantID(tid))
//
// Los middlewares HTTP inyectan un logger con request_id/method/path via ToContext.
package logger
