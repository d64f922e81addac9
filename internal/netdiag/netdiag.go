package netdiag

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

// Stage statuses. SKIP marks stages whose precondition is absent (no AAAA
// record), not failures.
const (
	StatusOK   = "OK"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Stage struct {
	Name     string
	Status   string
	Detail   string
	Duration time.Duration
}

type Summary struct {
	Host   string
	Stages []Stage
}

// AddStage appends an extra stage, used for checks that need dependencies
// the prober does not hold (Bot API getMe).
func (s *Summary) AddStage(stage Stage) {
	s.Stages = append(s.Stages, stage)
}

// Format renders the summary as a plain-text message, one stage per line.
func (s *Summary) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Диагностика сети: %s\n", s.Host)
	for _, stage := range s.Stages {
		fmt.Fprintf(&b, "%s: %s", stage.Name, stage.Status)
		if stage.Detail != "" {
			fmt.Fprintf(&b, " (%s)", stage.Detail)
		}
		if stage.Status != StatusSkip {
			fmt.Fprintf(&b, " %dms", stage.Duration.Milliseconds())
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

type resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

type dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Prober runs the diagnostic stages against a host. Every stage is
// attempted even when an earlier one fails, so the summary always shows
// the full picture.
type Prober struct {
	Host     string
	Attempts int
	Timeout  time.Duration

	resolver resolver
	dialer   dialer
	client   httpDoer
}

func NewProber(host string, attempts int, timeout time.Duration) *Prober {
	if attempts < 1 {
		attempts = 1
	}
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return &Prober{
		Host:     host,
		Attempts: attempts,
		Timeout:  timeout,
		resolver: net.DefaultResolver,
		dialer:   &net.Dialer{},
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *Prober) Run(ctx context.Context) Summary {
	summary := Summary{Host: p.Host}

	hasV6, dnsStage := p.probeDNS(ctx)
	summary.Stages = append(summary.Stages, dnsStage)

	summary.Stages = append(summary.Stages, p.probeTCP(ctx, "tcp4", "IPv4", true))
	summary.Stages = append(summary.Stages, p.probeTCP(ctx, "tcp6", "IPv6", hasV6))
	summary.Stages = append(summary.Stages, p.probeHTTPS(ctx))

	return summary
}

func (p *Prober) probeDNS(ctx context.Context) (hasV6 bool, stage Stage) {
	stage = Stage{Name: "DNS"}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	addrs, err := p.resolver.LookupIPAddr(ctx, p.Host)
	stage.Duration = time.Since(start)

	if err != nil {
		stage.Status = StatusFail
		stage.Detail = err.Error()
		return false, stage
	}

	var v4, v6 int
	for _, addr := range addrs {
		if addr.IP.To4() != nil {
			v4++
		} else {
			v6++
		}
	}

	stage.Status = StatusOK
	stage.Detail = fmt.Sprintf("%d A, %d AAAA", v4, v6)
	return v6 > 0, stage
}

func (p *Prober) probeTCP(ctx context.Context, network, label string, enabled bool) Stage {
	stage := Stage{Name: "TCP 443 " + label}

	if !enabled {
		stage.Status = StatusSkip
		stage.Detail = "нет AAAA-записей"
		return stage
	}

	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	start := time.Now()
	conn, err := p.dialer.DialContext(ctx, network, net.JoinHostPort(p.Host, "443"))
	stage.Duration = time.Since(start)

	if err != nil {
		stage.Status = StatusFail
		stage.Detail = err.Error()
		return stage
	}
	conn.Close()

	stage.Status = StatusOK
	return stage
}

func (p *Prober) probeHTTPS(ctx context.Context) Stage {
	stage := Stage{Name: "HTTPS"}

	var (
		durations []time.Duration
		codes     []string
		lastErr   error
	)

	for i := 0; i < p.Attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+p.Host+"/", nil)
		if err != nil {
			lastErr = err
			break
		}

		start := time.Now()
		resp, err := p.client.Do(req)
		elapsed := time.Since(start)
		if err != nil {
			lastErr = err
			continue
		}
		resp.Body.Close()

		durations = append(durations, elapsed)
		codes = append(codes, fmt.Sprintf("%d", resp.StatusCode))
	}

	if len(durations) == 0 {
		stage.Status = StatusFail
		if lastErr != nil {
			stage.Detail = lastErr.Error()
		}
		return stage
	}

	var total, max time.Duration
	for _, d := range durations {
		total += d
		if d > max {
			max = d
		}
	}
	avg := total / time.Duration(len(durations))

	stage.Status = StatusOK
	stage.Duration = max
	stage.Detail = fmt.Sprintf("avg %dms, max %dms, codes %s",
		avg.Milliseconds(), max.Milliseconds(), strings.Join(codes, " "))
	if lastErr != nil {
		stage.Detail += fmt.Sprintf(", %d/%d failed", p.Attempts-len(durations), p.Attempts)
	}
	return stage
}
