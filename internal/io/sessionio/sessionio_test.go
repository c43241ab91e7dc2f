package sessionio_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/sji-bdl/bdlimport/internal/ent/session"
	"github.com/sji-bdl/bdlimport/internal/io/sessionio"
	"github.com/sji-bdl/bdlimport/pkg/config"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
)

type fakeAuth struct {
	valid  string
	token  string
	logins int
	probes int
	fail   bool
}

func (f *fakeAuth) Login(_ context.Context, _, _ string) (session.Credential, error) {
	f.logins++
	if f.fail {
		return session.Credential{}, bdlerr.New(bdlerr.AuthenticationFailure,
			"/api/admins/login", errors.New("bad password"))
	}
	f.valid = f.token
	return session.NewCredential("x-auth", f.token), nil
}

func (f *fakeAuth) Me(_ context.Context, cred session.Credential) error {
	f.probes++
	if cred.Headers["x-auth"] != f.valid {
		return errors.New("unauthorized")
	}
	return nil
}

var _ = Describe("Sessionio", func() {
	var (
		dir  string
		path string
		cfg  config.Config
		auth *fakeAuth
		ctx  = context.Background()
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "sessionio")
		Expect(err).ToNot(HaveOccurred())
		path = filepath.Join(dir, "sub", "nodesession.json")
		cfg = config.New(config.OptSessionFile(path))
		auth = &fakeAuth{token: "new"}
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("logs in and saves session when there is no file", func() {
		cred, err := sessionio.New(cfg, auth).Session(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(cred.Headers["x-auth"]).To(Equal("new"))
		Expect(auth.logins).To(Equal(1))
		bs, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(bs)).To(ContainSubstring(`"headers"`))
		Expect(string(bs)).To(ContainSubstring(`"new"`))
	})

	It("reuses a valid saved session", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`{"headers":{"x-auth":"old"}}`), 0600)).To(Succeed())
		auth.valid = "old"
		cred, err := sessionio.New(cfg, auth).Session(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(cred.Headers["x-auth"]).To(Equal("old"))
		Expect(auth.probes).To(Equal(1))
		Expect(auth.logins).To(Equal(0))
	})

	It("logs in again and overwrites file when probe fails", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`{"headers":{"x-auth":"old"}}`), 0600)).To(Succeed())
		auth.valid = "something-else"
		cred, err := sessionio.New(cfg, auth).Session(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(cred.Headers["x-auth"]).To(Equal("new"))
		Expect(auth.logins).To(Equal(1))
		bs, err := os.ReadFile(path)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(bs)).To(ContainSubstring(`"new"`))
		Expect(string(bs)).ToNot(ContainSubstring(`"old"`))
	})

	It("logs in when session file is corrupted", func() {
		Expect(os.MkdirAll(filepath.Dir(path), 0755)).To(Succeed())
		Expect(os.WriteFile(path, []byte(`not json`), 0600)).To(Succeed())
		_, err := sessionio.New(cfg, auth).Session(ctx)
		Expect(err).ToNot(HaveOccurred())
		Expect(auth.probes).To(Equal(0))
		Expect(auth.logins).To(Equal(1))
	})

	It("fails when login fails", func() {
		auth.fail = true
		_, err := sessionio.New(cfg, auth).Session(ctx)
		Expect(bdlerr.IsKind(err, bdlerr.AuthenticationFailure)).To(BeTrue())
		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
