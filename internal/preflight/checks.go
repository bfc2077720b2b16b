package preflight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"marquee/internal/deck"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "readable")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckDeckFile verifies the static deck parses. No deck file is not a failure;
// the slideshow then consists of injected slides only.
func CheckDeckFile(path string) Result {
	const name = "Static deck"

	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Passed: true, Detail: "not configured"}
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (missing, using empty deck)", path)}
	}
	slides, err := deck.LoadStatic(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d slides)", path, len(slides))}
}

// CheckAdminPassword verifies an admin secret is configured.
func CheckAdminPassword(password string) Result {
	const name = "Admin password"
	if strings.TrimSpace(password) == "" {
		return Result{Name: name, Detail: "missing (set admin.password or MARQUEE_ADMIN_PASSWORD)"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckDaemon verifies the marquee HTTP API answers its health endpoint.
func CheckDaemon(ctx context.Context, baseURL string) Result {
	const name = "Daemon API"

	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing url"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := &http.Client{Timeout: 5 * time.Second}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, base+"/api/health", nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%v)", err)}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: summarizeRequestError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (%d)", resp.StatusCode)}
	}
	var payload struct {
		Status        string `json:"status"`
		UptimeSeconds int64  `json:"uptimeSeconds"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("health check failed (decode: %v)", err)}
	}
	uptime := time.Duration(payload.UptimeSeconds) * time.Second
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s, up %s)", base, payload.Status, uptime)}
}

// summarizeRequestError produces a human-readable summary for failed health checks.
func summarizeRequestError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (daemon unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (daemon unreachable)"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return fmt.Sprintf("unreachable (%v)", opErr.Err)
	}
	return err.Error()
}
