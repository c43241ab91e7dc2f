package sessionio

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnames/gnfmt"
	"github.com/gnames/gnsys"
	"github.com/sji-bdl/bdlimport/internal/ent/session"
	"github.com/sji-bdl/bdlimport/pkg/config"
)

type sessionio struct {
	path     string
	user     string
	password string
	auth     session.Authenticator
	enc      gnfmt.Encoder
}

// New creates a session provider that keeps the session in a file.
func New(cfg config.Config, auth session.Authenticator) session.Provider {
	res := sessionio{
		path:     cfg.SessionFile,
		user:     cfg.APIUser,
		password: cfg.APIPassword,
		auth:     auth,
		enc:      gnfmt.GNjson{Pretty: true},
	}
	return &res
}

// Session returns the saved session if the API still accepts it.
// Otherwise it logs in and overwrites the session file.
func (s *sessionio) Session(ctx context.Context) (session.Credential, error) {
	cred, ok := s.load()
	if ok {
		err := s.auth.Me(ctx, cred)
		if err == nil {
			slog.Debug("Using saved session", "path", s.path)
			return cred, nil
		}
		slog.Warn("Saved session is not valid, logging in", "error", err)
	}

	cred, err := s.auth.Login(ctx, s.user, s.password)
	if err != nil {
		slog.Error("Cannot log in", "user", s.user, "error", err)
		return cred, err
	}
	slog.Info("Logged in", "user", s.user)

	if err = s.save(cred); err != nil {
		slog.Warn("Cannot save session", "path", s.path, "error", err)
	}
	return cred, nil
}

func (s *sessionio) load() (session.Credential, bool) {
	var res session.Credential
	exists, _ := gnsys.FileExists(s.path)
	if !exists {
		return res, false
	}

	bs, err := os.ReadFile(s.path)
	if err != nil {
		slog.Warn("Cannot read session file", "path", s.path, "error", err)
		return res, false
	}
	if err = s.enc.Decode(bs, &res); err != nil {
		slog.Warn("Cannot decode session file", "path", s.path, "error", err)
		return res, false
	}
	return res, !res.IsEmpty()
}

func (s *sessionio) save(cred session.Credential) error {
	err := gnsys.MakeDir(filepath.Dir(s.path))
	if err != nil {
		return err
	}
	bs, err := s.enc.Encode(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, bs, 0600)
}
