package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
	"github.com/arian-lol/msg-mirror/internal/mcp"
)

func main() {
	apiURL := os.Getenv("MIRROR_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:9876"
	}

	var pkg string
	var sms, ongoing bool

	flagSet := pflag.NewFlagSet("send-notification", pflag.ContinueOnError)
	flagSet.StringVar(&apiURL, "api", apiURL, "base URL of the msg-mirror API")
	flagSet.StringVar(&pkg, "package", "com.google.android.apps.messaging", "package name of the posting app")
	flagSet.BoolVar(&sms, "sms", false, "insert an inbound SMS instead of posting a notification")
	flagSet.BoolVar(&ongoing, "ongoing", false, "mark the notification as ongoing")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(1)
	}

	args := flagSet.Args()
	if len(args) < 2 {
		fmt.Println("Usage: send-notification [--sms] [--package pkg] <title|from> <text|body>")
		os.Exit(1)
	}

	client := mcp.NewClient(apiURL)
	now := time.Now().UnixMilli()

	if sms {
		msg := &domain.SmsMessage{From: args[0], Body: args[1], Date: now}
		if err := client.PostSms(msg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("SMS inserted successfully!")
		return
	}

	flags := 0
	if ongoing {
		flags |= domain.FlagOngoingEvent
	}
	raw := &domain.RawNotification{
		PackageName: pkg,
		PostTime:    now,
		Notification: &domain.Notification{
			Flags: flags,
			Extras: domain.Extras{
				domain.ExtraTitle: args[0],
				domain.ExtraText:  args[1],
			},
		},
	}

	routed, err := client.PostNotification(raw)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if !routed {
		fmt.Println("Notification was filtered out")
		return
	}
	fmt.Println("Notification posted successfully!")
}
