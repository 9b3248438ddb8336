// Package sftp implements a backend over SFTP.
//
// Unlike object stores, SFTP has a native rename, so moves execute as a
// single server-side operation. There is no server-side copy: the copy
// capability stays undeclared and copies lower to read+write.
package sftp

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/edfm/edfm/pkg/backend"
	"github.com/edfm/edfm/pkg/credentials"
	"github.com/edfm/edfm/pkg/result"
)

var _ backend.Backend = (*Backend)(nil)

// Config parameterizes an SFTP backend connection.
type Config struct {
	// Host is the SSH server hostname or address. Required.
	Host string

	// Port is the SSH port. Zero uses 22.
	Port int

	// Root is the remote base directory. Empty operates relative to the
	// login directory.
	Root string

	// Credentials supply the username plus a password or private key.
	Credentials credentials.Credentials

	// Timeout bounds the SSH handshake. Zero uses 30 seconds.
	Timeout time.Duration

	// HostKeyCallback verifies the server host key. Nil accepts any
	// host key, which is only acceptable for trusted networks.
	HostKeyCallback ssh.HostKeyCallback
}

// Backend is an SFTP implementation of backend.Backend.
type Backend struct {
	name   string
	root   string
	conn   *ssh.Client
	client *sftp.Client
}

// Dial connects to the SSH server and opens an SFTP session.
func Dial(ctx context.Context, name string, cfg Config) (*Backend, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("sftp backend: host is required")
	}
	if cfg.Credentials.Username == "" {
		return nil, fmt.Errorf("sftp backend: username is required")
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	sshCfg := &ssh.ClientConfig{
		User:            cfg.Credentials.Username,
		HostKeyCallback: cfg.HostKeyCallback,
		Timeout:         timeout,
	}
	if sshCfg.HostKeyCallback == nil {
		sshCfg.HostKeyCallback = ssh.InsecureIgnoreHostKey()
	}

	if len(cfg.Credentials.PrivateKeyPEM) > 0 {
		signer, err := ssh.ParsePrivateKey(cfg.Credentials.PrivateKeyPEM)
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
		sshCfg.Auth = append(sshCfg.Auth, ssh.PublicKeys(signer))
	}
	if cfg.Credentials.Password != "" {
		sshCfg.Auth = append(sshCfg.Auth, ssh.Password(cfg.Credentials.Password))
	}
	if len(sshCfg.Auth) == 0 {
		return nil, fmt.Errorf("sftp backend: no authentication material provided")
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	addr := net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", port))

	dialer := &net.Dialer{Timeout: timeout}
	tcp, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(tcp, addr, sshCfg)
	if err != nil {
		_ = tcp.Close()
		return nil, fmt.Errorf("ssh handshake with %s failed: %w", addr, err)
	}
	conn := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to open sftp session on %s: %w", addr, err)
	}

	return &Backend{name: name, root: cfg.Root, conn: conn, client: client}, nil
}

// NewWithClient wraps an existing SFTP session. The caller keeps
// ownership of the underlying SSH connection.
func NewWithClient(name string, client *sftp.Client, root string) *Backend {
	return &Backend{name: name, root: root, client: client}
}

// Close shuts down the SFTP session and, when dialed by this backend,
// the SSH connection beneath it.
func (b *Backend) Close() error {
	err := b.client.Close()
	if b.conn != nil {
		if cerr := b.conn.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (b *Backend) Name() string { return b.name }

func (b *Backend) Capabilities() backend.Set {
	return backend.NewSet(
		backend.CapList, backend.CapRead, backend.CapWrite,
		backend.CapDelete, backend.CapMkdir, backend.CapMove,
		backend.CapDownload, backend.CapUpload, backend.CapMetadata,
		backend.CapPermissions, backend.CapSymlinks,
	)
}

// resolve maps a backend path onto the remote tree.
func (b *Backend) resolve(p string) string {
	p = strings.Trim(p, "/")
	switch {
	case b.root == "" && p == "":
		return "."
	case b.root == "":
		return p
	case p == "":
		return b.root
	default:
		return path.Join(b.root, p)
	}
}

// classify maps SFTP status codes onto the result taxonomy. Errors
// without a status code mean the channel itself broke, which is a
// connection failure.
func classify[T any](target string, err error) result.Result[T] {
	var status *sftp.StatusError
	if errors.As(err, &status) {
		switch status.FxCode() {
		case sftp.ErrSSHFxNoSuchFile:
			return result.NotFoundf[T](target)
		case sftp.ErrSSHFxPermissionDenied:
			return result.Denied[T](target)
		case sftp.ErrSSHFxNoConnection, sftp.ErrSSHFxConnectionLost:
			return result.ConnFailed[T](fmt.Sprintf("sftp connection lost during call for %s", target), err)
		case sftp.ErrSSHFxOpUnsupported:
			return result.Unsupported[T](target)
		default:
			return result.Wrap[T]("sftp_error", err)
		}
	}

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return result.NotFoundf[T](target)
	case errors.Is(err, fs.ErrPermission):
		return result.Denied[T](target)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return result.Aborted[T]()
	default:
		return result.ConnFailed[T](fmt.Sprintf("sftp call for %s failed", target), err)
	}
}
