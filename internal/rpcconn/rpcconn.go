// Package rpcconn implements the connection bring-up and health-probing
// subsystem described in spec.md §4.1. It is ported directly from
// create_rpc_connections in the original orchestrator's
// peggy_utils/src/connection_prep.rs, with panics replaced by returned
// UnrecoverableErrors per spec.md §9 Design Notes.
package rpcconn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cosmos-bridge/orchestrator/internal/bridge"
)

// Prober is satisfied by anything that can dial a URL and perform a
// single liveness probe against it. Each endpoint kind (Cosmos gRPC,
// Cosmos legacy REST, EVM JSON-RPC) supplies its own Prober.
type Prober interface {
	// Dial builds a client handle for addr without probing it.
	Dial(ctx context.Context, addr string) (any, error)
	// Probe performs the liveness check against a dialed handle.
	Probe(ctx context.Context, client any) error
}

// Bind resolves a single endpoint URL to a working client handle,
// applying the localhost and https-upgrade repair rules from spec.md
// §4.1. name is used only for diagnostic messages ("Cosmos gRPC",
// "Ethereum JSON-RPC", ...).
func Bind(ctx context.Context, log zerolog.Logger, name, rawURL string, timeout time.Duration, p Prober) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, bridge.NewUnrecoverableError("invalid %s url %q: %v", name, rawURL, err)
	}
	if err := checkScheme(u); err != nil {
		return nil, bridge.NewUnrecoverableError("%s url %q has an invalid scheme, please choose http or https", name, rawURL)
	}

	trimmed := strings.TrimSuffix(rawURL, "/")
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := p.Dial(dialCtx, trimmed)
	if err == nil {
		if perr := p.Probe(dialCtx, client); perr == nil {
			return client, nil
		} else {
			err = perr
		}
	}

	log.Warn().Err(err).Str("endpoint", name).Str("url", rawURL).Msg("failed to reach endpoint, trying fallback options")

	if strings.Contains(strings.ToLower(u.Host), "localhost") {
		return repairLocalhost(ctx, log, name, rawURL, u, timeout, p)
	}
	if u.Port() == "" || u.Scheme == "http" {
		return repairHTTPSUpgrade(ctx, log, name, rawURL, u, timeout, p)
	}
	return nil, bridge.NewUnrecoverableError("could not connect to %s at %q: %v", name, rawURL, err)
}

func checkScheme(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid scheme %q", u.Scheme)
	}
	return nil
}

func port(u *url.URL, fallback string) string {
	if p := u.Port(); p != "" {
		return p
	}
	return fallback
}

// repairLocalhost re-attempts the probe against ::1 and 127.0.0.1 on the
// same port and scheme, per spec.md §4.1's localhost rule.
func repairLocalhost(ctx context.Context, log zerolog.Logger, name, original string, u *url.URL, timeout time.Duration, p Prober) (any, error) {
	pt := port(u, "80")
	ipv6URL := fmt.Sprintf("%s://[::1]:%s", u.Scheme, pt)
	ipv4URL := fmt.Sprintf("%s://127.0.0.1:%s", u.Scheme, pt)

	ipv4Client, ipv4Err := probeOnce(ctx, timeout, p, ipv4URL)
	ipv6Client, ipv6Err := probeOnce(ctx, timeout, p, ipv6URL)

	log.Warn().Str("ipv6", ipv6URL).Str("ipv4", ipv4URL).Msg("trying localhost fallback urls")

	switch {
	case ipv4Err == nil && ipv6Err != nil:
		log.Info().Str("endpoint", name).Str("from", original).Str("to", ipv4URL).Msg("url fallback succeeded, corrected to ipv4")
		return ipv4Client, nil
	case ipv4Err != nil && ipv6Err == nil:
		log.Info().Str("endpoint", name).Str("from", original).Str("to", ipv6URL).Msg("url fallback succeeded, corrected to ipv6")
		return ipv6Client, nil
	case ipv4Err == nil && ipv6Err == nil:
		return nil, bridge.NewUnrecoverableError("internal error: both ipv4 and ipv6 localhost probes for %s succeeded where the base url failed — this should be unreachable", name)
	default:
		return nil, bridge.NewUnrecoverableError("could not connect to %s, are you sure it's running and on the specified port? %q", name, original)
	}
}

// repairHTTPSUpgrade re-attempts the probe against https on ports 80 and
// 443, per spec.md §4.1's https-upgrade rule. No https -> http downgrade
// is ever attempted.
func repairHTTPSUpgrade(ctx context.Context, log zerolog.Logger, name, original string, u *url.URL, timeout time.Duration, p Prober) (any, error) {
	host := u.Hostname()
	if host == "" {
		return nil, bridge.NewUnrecoverableError("%s url %q contains no host", name, original)
	}
	url80 := fmt.Sprintf("https://%s:80", host)
	url443 := fmt.Sprintf("https://%s:443", host)

	client80, err80 := probeOnce(ctx, timeout, p, url80)
	client443, err443 := probeOnce(ctx, timeout, p, url443)

	log.Warn().Str("url80", url80).Str("url443", url443).Msg("trying https upgrade fallback urls")

	switch {
	case err80 == nil && err443 != nil:
		log.Info().Str("endpoint", name).Str("from", original).Str("to", url80).Msg("https upgrade succeeded")
		return client80, nil
	case err80 != nil && err443 == nil:
		log.Info().Str("endpoint", name).Str("from", original).Str("to", url443).Msg("https upgrade succeeded")
		return client443, nil
	case err80 == nil && err443 == nil:
		return nil, bridge.NewUnrecoverableError("internal error: both https upgrade candidates for %s succeeded where the base url failed — this should be unreachable", name)
	default:
		return nil, bridge.NewUnrecoverableError("could not connect to %s, are you sure it's running and on the specified port? %q", name, original)
	}
}

func probeOnce(ctx context.Context, timeout time.Duration, p Prober, addr string) (any, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := p.Dial(dialCtx, addr)
	if err != nil {
		return nil, err
	}
	if err := p.Probe(dialCtx, client); err != nil {
		return nil, err
	}
	return client, nil
}
