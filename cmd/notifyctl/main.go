// Command notifyctl is a terminal front-end for the notification API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/notihub/notification-backend-go/internal/client"
	"github.com/notihub/notification-backend-go/internal/domain/notification"
	"github.com/notihub/notification-backend-go/internal/pkg/validator"
)

const usage = `usage: notifyctl <command> [flags]

commands:
  login <ownerId>                        obtain a token and remember it
  list [-owner id] [-page N] [-limit N] [-search s] [-category c] [-status all|read|unread]
  send <ownerId> <category> <content...>
  read <id>
  cancel <id>
  watch [-owner id]                      stream live events
`

var statuses = []string{string(client.StatusAll), string(client.StatusRead), string(client.StatusUnread)}

// usageError is a bad command line rather than a failed request
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr, defaultConfigPath()))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, configPath string) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		return 1
	}
	api := client.New(cfg.APIURL, client.WithToken(cfg.Token))

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		err = cmdLogin(ctx, api, cfg, configPath, rest, stdout)
	case "list":
		err = cmdList(ctx, api, cfg, rest, stdout)
	case "send":
		err = cmdSend(ctx, api, rest, stdout)
	case "read":
		err = cmdRead(ctx, api, rest, stdout)
	case "cancel":
		err = cmdCancel(ctx, api, rest, stdout)
	case "watch":
		err = cmdWatch(ctx, api, cfg, rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	var uerr usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &uerr):
		fmt.Fprintf(stderr, "%s %s\n\n%s", color.RedString("usage:"), uerr.msg, usage)
		return 2
	default:
		fmt.Fprintln(stderr, color.RedString("error:"), err)
		return 1
	}
}

func cmdLogin(ctx context.Context, api *client.Client, cfg *cliConfig, configPath string, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("login needs exactly one ownerId")
	}

	resp, err := api.Login(ctx, args[0])
	if err != nil {
		return err
	}

	cfg.Token = resp.Token
	cfg.OwnerID = args[0]
	if err := saveConfig(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s logged in as %s\n", color.GreenString("✓"), color.CyanString(args[0]))
	return nil
}

func cmdList(ctx context.Context, api *client.Client, cfg *cliConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	owner := fs.String("owner", cfg.OwnerID, "owner whose notifications to list")
	page := fs.Int("page", 0, "page number (1-indexed)")
	limit := fs.Int("limit", 0, "page size")
	search := fs.String("search", "", "case-insensitive text in content")
	category := fs.String("category", client.CategoryAll, "exact category or all")
	status := fs.String("status", string(client.StatusAll), "all, read or unread")
	if err := fs.Parse(args); err != nil {
		return usagef("list: %v", err)
	}
	if !validator.IsInSlice(*status, statuses) {
		return usagef("list: -status must be one of %s", strings.Join(statuses, ", "))
	}
	if *owner == "" {
		return usagef("no owner: pass -owner or run login first")
	}

	inbox := client.NewInbox(api, *owner, *limit)
	if err := inbox.Goto(ctx, *page); err != nil {
		return err
	}
	inbox.SetFilter(client.Filter{Search: *search, Category: *category, Status: client.Status(*status)})

	renderInbox(out, inbox)
	return nil
}

func renderInbox(out io.Writer, inbox *client.Inbox) {
	items := inbox.View()
	meta := inbox.Meta()

	if len(items) == 0 {
		fmt.Fprintln(out, color.HiBlackString("no notifications"))
	} else {
		tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, n := range items {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", statusMark(n), n.ID, color.CyanString(n.Category), n.Content)
		}
		tw.Flush()
	}

	fmt.Fprintln(out, color.HiBlackString("showing %d of %d (page %d/%d, %d unread on this page)",
		inbox.Count(), meta.Total, meta.Page, meta.TotalPages, inbox.UnreadCount()))
}

func statusMark(n notification.NotificationResponse) string {
	if n.Read {
		return color.HiBlackString("read")
	}
	return color.New(color.FgYellow, color.Bold).Sprint("new")
}

func cmdSend(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	if len(args) < 3 {
		return usagef("send needs <ownerId> <category> <content...>")
	}

	n, err := api.Create(ctx, notification.CreateNotificationRequest{
		OwnerID:  args[0],
		Category: args[1],
		Content:  strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s created %s\n", color.GreenString("✓"), n.ID)
	return nil
}

func cmdRead(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("read needs exactly one id")
	}
	if err := api.MarkRead(ctx, args[0]); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s marked %s as read\n", color.GreenString("✓"), args[0])
	return nil
}

func cmdCancel(ctx context.Context, api *client.Client, args []string, out io.Writer) error {
	if len(args) != 1 {
		return usagef("cancel needs exactly one id")
	}
	err := api.Cancel(ctx, args[0])
	if errors.Is(err, notification.ErrNotificationNotFound) {
		fmt.Fprintf(out, "%s %s already removed\n", color.HiBlackString("-"), args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s removed %s\n", color.GreenString("✓"), args[0])
	return nil
}

func cmdWatch(ctx context.Context, api *client.Client, cfg *cliConfig, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	owner := fs.String("owner", cfg.OwnerID, "owner to watch")
	if err := fs.Parse(args); err != nil {
		return usagef("watch: %v", err)
	}
	if *owner == "" {
		return usagef("no owner: pass -owner or run login first")
	}

	fmt.Fprintf(out, "watching %s, ctrl-c to stop\n", color.CyanString(*owner))
	err := api.Stream(ctx, *owner, func(ev notification.Event) error {
		label := color.GreenString(string(ev.Type))
		switch ev.Type {
		case notification.EventRead:
			label = color.HiBlackString(string(ev.Type))
		case notification.EventCanceled:
			label = color.RedString(string(ev.Type))
		}
		fmt.Fprintf(out, "%s %s %s %s\n", label, ev.Notification.ID, color.CyanString(ev.Notification.Category), ev.Notification.Content)
		return nil
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
