package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/legamerdc/cathy"
	"github.com/legamerdc/cathy/client"
	"github.com/legamerdc/cathy/internal/logging"
	"github.com/legamerdc/cathy/protocol"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

type printer struct{}

func (printer) OnOpen(c *client.Client, reply *protocol.ConnectedReply) {
	fmt.Printf("connected: uid=%d session=%s\n", reply.Uid, reply.SessionId)
}

func (printer) OnMessage(c *client.Client, msg *protocol.MsgToUser) {
	fmt.Printf("[%d] from %d (#%d): %s\n", msg.Timestamp, msg.SenderUid, msg.MessageId, msg.Content)
}

func (printer) OnClose(c *client.Client, err error) {
	fmt.Printf("disconnected: %v\n", err)
}

func main() {
	flags := pflag.NewFlagSet("cathy-client", pflag.ExitOnError)
	configPath := flags.String("config", "", "path to a YAML config file")
	flags.String("address", cathy.DefaultAddress, "server address")
	flags.String("log-level", "info", "log level")
	flags.Parse(os.Args[1:])

	cfg, err := cathy.LoadConfig(*configPath, flags)
	if err != nil {
		logrus.WithError(err).Fatal("cathy-client: load config")
	}
	if err := logging.Setup(cfg.LogLevel, os.Stderr); err != nil {
		logrus.WithError(err).Fatal("cathy-client: setup logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	c, err := client.Dial(dialCtx, cfg, printer{})
	cancel()
	if err != nil {
		logrus.WithError(err).Fatal("cathy-client: dial")
	}
	defer c.Close()

	go readCommands(c)

	select {
	case <-ctx.Done():
	case <-c.Done():
	}
}

// readCommands 逐行读取 stdin 的 send 指令；格式错误只提示，不影响连接
func readCommands(c *client.Client) {
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		cmd, err := client.ParseCommand(line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v (usage: send <uid> <content>)\n", err)
			continue
		}
		if err := c.SendToUser(cmd.ReceiverUID, cmd.Content); err != nil {
			logrus.WithError(err).Warn("cathy-client: send failed")
		}
	}
}
