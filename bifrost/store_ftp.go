// Copyright by the git-bifrost authors
// SPDX-License-Identifier: BSD-2-Clause

package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/textproto"
	"os"
	"path"

	"github.com/jlaffaye/ftp"
)

func init() {
	registerScheme("ftp", newFTPStore)
	registerScheme("ftps", newFTPStore)
}

// ftpStore is the FTP/FTPS transport. FTPS is selected by URL scheme
// and negotiated with explicit TLS.
type ftpStore struct {
	rec  StoreRecord
	conn *ftp.ServerConn
}

func newFTPStore(rec StoreRecord) Store {
	return &ftpStore{rec: rec}
}

func (s *ftpStore) Open(ctx context.Context) error {
	addr := s.rec.URL.Host
	opts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if s.rec.URL.Scheme == "ftps" {
		opts = append(opts, ftp.DialWithExplicitTLS(&tls.Config{ServerName: s.rec.URL.Hostname()}))
	}
	conn, err := ftp.Dial(addr, opts...)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	if s.rec.Username != "" {
		if err := conn.Login(s.rec.Username, s.rec.Password); err != nil {
			conn.Quit()
			return fmt.Errorf("authenticating to %s: %w", addr, err)
		}
	}
	s.conn = conn
	return nil
}

func (s *ftpStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Quit()
}

func (s *ftpStore) remotePath(relativeName string) string {
	return path.Join(s.rec.URL.Path, relativeName)
}

func (s *ftpStore) Push(ctx context.Context, localPath, relativeName string) (PushResult, error) {
	dest := s.remotePath(relativeName)
	if size, err := s.conn.FileSize(dest); err == nil {
		if info, lerr := os.Stat(localPath); lerr == nil && info.Size() == size {
			return Skipped, nil
		}
	}
	f, err := os.Open(localPath)
	if err != nil {
		return Failed, fmt.Errorf("opening local source %s: %w", localPath, err)
	}
	defer f.Close()
	if err := s.conn.MakeDir(path.Dir(dest)); err != nil {
		// Directory probably already exists; the Stor below will
		// surface any real problem.
		log.Debugf("ftp mkdir %s: %v", path.Dir(dest), err)
	}
	if err := s.conn.Stor(dest, f); err != nil {
		return Failed, fmt.Errorf("storing %s: %w", dest, err)
	}
	return Success, nil
}

func (s *ftpStore) Pull(ctx context.Context, relativeName string) ([]byte, bool, error) {
	src := s.remotePath(relativeName)
	resp, err := s.conn.Retr(src)
	if err != nil {
		if tpErr, ok := err.(*textproto.Error); ok && tpErr.Code == ftp.StatusFileUnavailable {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("retrieving %s: %w", src, err)
	}
	defer resp.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp); err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", src, err)
	}
	return buf.Bytes(), true, nil
}
