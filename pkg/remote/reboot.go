package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const bootIDCommand = "cat /proc/sys/kernel/random/boot_id"

// RebootPollInterval is how often Reboot checks whether a host is back.
var RebootPollInterval = 5 * time.Second

// Reboot restarts the host behind ex and waits until it accepts commands with
// a new boot id. ex is closed.
func Reboot(ctx context.Context, d Dialer, ex Executor, timeout time.Duration) error {
	host := ex.Host()

	before, err := ex.Run(ctx, bootIDCommand)
	if err != nil {
		return err
	}
	before = strings.TrimSpace(before)

	log.Infof("rebooting %s", host)

	// the connection usually drops before the command returns
	if _, err := ex.Sudo(ctx, "shutdown -r now"); err != nil {
		log.Debugf("reboot command on %s returned: %s", host, err)
	}
	ex.Close()

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(RebootPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s did not come back within %s of reboot: %w", host, timeout, ctx.Err())
		case <-ticker.C:
			after, err := bootID(ctx, d, host)
			if err != nil {
				log.Debugf("waiting for %s: %s", host, err)
				continue
			}
			if after != before {
				log.Infof("%s is back up", host)
				return nil
			}
		}
	}
}

func bootID(ctx context.Context, d Dialer, host string) (string, error) {
	ex, err := d.Dial(ctx, host)
	if err != nil {
		return "", err
	}
	defer ex.Close()

	out, err := ex.Run(ctx, bootIDCommand)
	return strings.TrimSpace(out), err
}
