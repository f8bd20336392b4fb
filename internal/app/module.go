package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/gate"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.gate.enabled") {
		if err := gate.New(gate.Dependency{
			DBConn:     a.dbConn,
			CacheConn:  a.cacheConn,
			Router:     a.router,
			Config:     a.config,
			Instrument: a.ins,
			Mail:       a.mail,
			UID:        a.uid,
			OID:        a.oid,
			Bcrypt:     a.bcrypt,
			HMAC:       a.hmac,
			OTP:        a.otp,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module gate", "error", err)
			os.Exit(1)
		}
	}
}
