// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

func init() {
	registerScheme("sftp", newSFTPStore)
}

// sftpStore is the SFTP transport over SSH. It authenticates with the
// record's password when one is set; no agent or key-file auth is
// offered, and the server's host key is not checked.
type sftpStore struct {
	rec    StoreRecord
	conn   *ssh.Client
	client *sftp.Client
}

func newSFTPStore(rec StoreRecord) Store {
	return &sftpStore{rec: rec}
}

func (s *sftpStore) Open(ctx context.Context) error {
	host := s.rec.URL.Hostname()
	port := s.rec.URL.Port()
	if port == "" {
		port = "22"
	}
	config := &ssh.ClientConfig{
		User:            s.rec.Username,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), // no CA material is configured for this store type
	}
	if s.rec.Password != "" {
		config.Auth = append(config.Auth, ssh.Password(s.rec.Password))
	}
	conn, err := ssh.Dial("tcp", net.JoinHostPort(host, port), config)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", host, err)
	}
	client, err := sftp.NewClient(conn)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting sftp session: %w", err)
	}
	s.conn = conn
	s.client = client
	return nil
}

func (s *sftpStore) Close() error {
	var firstErr error
	if s.client != nil {
		firstErr = s.client.Close()
	}
	if s.conn != nil {
		if err := s.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *sftpStore) remotePath(relativeName string) string {
	return path.Join(s.rec.URL.Path, relativeName)
}

func (s *sftpStore) Push(ctx context.Context, localPath, relativeName string) (PushResult, error) {
	dest := s.remotePath(relativeName)
	if info, err := s.client.Stat(dest); err == nil {
		if local, lerr := os.Stat(localPath); lerr == nil && local.Size() == info.Size() {
			return Skipped, nil
		}
	}
	if err := s.client.MkdirAll(path.Dir(dest)); err != nil {
		return Failed, fmt.Errorf("creating remote directory: %w", err)
	}
	in, err := os.Open(localPath)
	if err != nil {
		return Failed, fmt.Errorf("opening local source %s: %w", localPath, err)
	}
	defer in.Close()
	out, err := s.client.Create(dest)
	if err != nil {
		return Failed, fmt.Errorf("creating remote file %s: %w", dest, err)
	}
	_, copyErr := io.Copy(out, in)
	closeErr := out.Close()
	if copyErr != nil {
		return Failed, fmt.Errorf("writing %s: %w", dest, copyErr)
	}
	if closeErr != nil {
		return Failed, fmt.Errorf("closing remote file %s: %w", dest, closeErr)
	}
	return Success, nil
}

func (s *sftpStore) Pull(ctx context.Context, relativeName string) ([]byte, bool, error) {
	src := s.remotePath(relativeName)
	f, err := s.client.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("opening %s: %w", src, err)
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", src, err)
	}
	return content, true, nil
}
