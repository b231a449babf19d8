// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cache provides the Valkey (Redis-compatible) client and the
// short-lived cache in front of the ranking queries.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ValkeyOptions locate a Valkey logical database.
type ValkeyOptions struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (o ValkeyOptions) Addr() string {
	return net.JoinHostPort(o.Host, o.Port)
}

// Cache and session lookups sit on the request path; a slow Valkey should
// fail them fast rather than hold the request.
const (
	dialTimeout = 3 * time.Second
	ioTimeout   = 500 * time.Millisecond
	pingTimeout = 5 * time.Second
)

// NewValkeyClient builds a client without contacting the server.
func NewValkeyClient(o ValkeyOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         o.Addr(),
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})
}

// ConnectValkey builds a client and pings the server once.
func ConnectValkey(ctx context.Context, o ValkeyOptions) (*redis.Client, error) {
	client := NewValkeyClient(o)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("valkey ping %s: %w", o.Addr(), err)
	}

	slog.Info("valkey connected", "addr", o.Addr(), "db", o.DB)
	return client, nil
}
