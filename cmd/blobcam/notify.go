/*
DESCRIPTION
  notify.go reports progress to systemd when blobcam runs as a service.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package main

import (
	"github.com/ausocean/utils/logging"
	"github.com/coreos/go-systemd/daemon"
)

// notifier sends sd_notify messages. When not run by systemd the messages
// are dropped.
type notifier struct {
	log logging.Logger
}

func newNotifier(l logging.Logger) *notifier { return &notifier{log: l} }

// Status implements campaign.Notifier.
func (n *notifier) Status(msg string) error {
	return n.send("STATUS=" + msg)
}

func (n *notifier) ready() {
	if err := n.send("READY=1"); err != nil {
		n.log.Warning(pkg+"could not notify ready", "error", err)
	}
}

func (n *notifier) stopping() {
	if err := n.send("STOPPING=1"); err != nil {
		n.log.Warning(pkg+"could not notify stopping", "error", err)
	}
}

func (n *notifier) send(state string) error {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		return err
	}
	if !sent {
		n.log.Debug(pkg+"not running under systemd, notification dropped", "state", state)
	}
	return nil
}
