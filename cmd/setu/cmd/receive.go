package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/725aayush/setu-sharing/internal/browse"
	"github.com/725aayush/setu-sharing/internal/logging"
	"github.com/725aayush/setu-sharing/internal/session"
	"github.com/725aayush/setu-sharing/internal/transfer"
	"github.com/725aayush/setu-sharing/pkg/protocol"
	"github.com/725aayush/setu-sharing/pkg/shareclient"
)

var receiveDest string

var receiveCmd = &cobra.Command{
	Use:   "receive <token>",
	Short: "Open a share and browse its files",
	Long: `Connect to a share by token. After the share password is accepted,
an interactive prompt lets you list, download, and upload files.

Type "help" at the prompt for the available commands.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client := newClient()

		gate := session.NewGate(client)
		state, err := gate.SubmitToken(ctx, args[0])
		if err != nil {
			return err
		}

		state, err = unlock(ctx, gate, state)
		if err != nil {
			return err
		}
		if state != session.StateAuthenticated {
			return fmt.Errorf("could not open share: %s", gate.Message())
		}

		if status := gate.ShareStatus(); status != nil && status.Expires != "" {
			fmt.Printf("Share open. Expires %s.\n", status.Expires)
		} else {
			fmt.Println("Share open.")
		}

		nav := browse.NewNavigator(client, gate.Token())
		if err := nav.Load(ctx, ""); err != nil {
			return fmt.Errorf("failed to load share root: %w", err)
		}

		sess := &receiveSession{
			client:   client,
			token:    gate.Token(),
			nav:      nav,
			uploads:  transfer.NewUploadCoordinator(client, nav, gate.Token()),
			destDir:  receiveDest,
			controls: browse.Controls{Sort: browse.SortName, Filter: browse.FilterAll},
		}
		return sess.run(ctx, os.Stdin, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(receiveCmd)

	receiveCmd.Flags().StringVar(&receiveDest, "dest", ".", "directory downloads are saved into")
}

// unlock walks the gate to an authenticated session, prompting for the
// password as often as the server rejects it. An empty password aborts.
func unlock(ctx context.Context, gate *session.Gate, state session.State) (session.State, error) {
	for state == session.StatePasswordRequired {
		if msg := gate.Message(); msg != "" {
			fmt.Println(msg)
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return state, err
		}
		if password == "" {
			return state, errors.New("aborted")
		}
		// Rejections keep the gate on the prompt with the server's
		// message retained, so the loop just comes back around.
		state, err = gate.SubmitPassword(ctx, password)
		if err != nil {
			logging.Debug("password attempt rejected", zap.Error(err))
		}
	}

	if state == session.StateError {
		switch gate.Reason() {
		case session.ReasonExpiredOrMissing:
			return state, errors.New("share not found or expired")
		case session.ReasonUnreachable:
			return state, errors.New("server unreachable, try again later")
		}
	}
	return state, nil
}

type receiveSession struct {
	client   *shareclient.Client
	token    string
	nav      *browse.Navigator
	uploads  *transfer.UploadCoordinator
	destDir  string
	controls browse.Controls
}

func (s *receiveSession) run(ctx context.Context, in io.Reader, out io.Writer) error {
	s.list(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprintf(out, "setu:/%s> ", s.nav.Path())
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			printHelp(out)
		case "ls":
			err = s.refreshAndList(ctx, out)
		case "cd":
			err = s.cd(ctx, out, arg)
		case "back", "..":
			err = s.back(ctx, out)
		case "pwd":
			fmt.Fprintf(out, "/%s\n", s.nav.Path())
		case "get":
			err = s.get(ctx, out, arg)
		case "clone":
			err = s.clone(ctx, out)
		case "put":
			err = s.put(ctx, out, arg)
		case "preview":
			err = s.preview(ctx, out, arg)
		case "info":
			err = s.info(ctx, out)
		case "search":
			s.controls.Search = arg
			s.list(out)
		case "find":
			err = s.find(ctx, out, arg)
		case "sort":
			err = s.setSort(out, arg)
		case "filter":
			err = s.setFilter(out, arg)
		default:
			fmt.Fprintf(out, "unknown command %q, type \"help\"\n", cmd)
		}
		if err != nil {
			if errors.Is(err, shareclient.ErrShareNotFound) {
				return errors.New("share expired or was revoked")
			}
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printHelp(out io.Writer) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ls\trefresh and list the current folder")
	fmt.Fprintln(w, "cd <folder>\tenter a folder")
	fmt.Fprintln(w, "back\tgo up one folder")
	fmt.Fprintln(w, "pwd\tprint the current folder")
	fmt.Fprintln(w, "get <file>\tdownload a file")
	fmt.Fprintln(w, "clone\tdownload the current folder as a zip archive")
	fmt.Fprintln(w, "put <local file>\tupload a file into the current folder")
	fmt.Fprintln(w, "preview <file>\tshow a text preview or file details")
	fmt.Fprintln(w, "info\tshow share details")
	fmt.Fprintln(w, "search <text>\tfilter the listing by name (empty to clear)")
	fmt.Fprintln(w, "find <text>\tsearch the whole share from the root")
	fmt.Fprintln(w, "sort <name|size|modified>\tchange sort order")
	fmt.Fprintln(w, "filter <all|folders|files|images|docs>\tchange type filter")
	fmt.Fprintln(w, "quit\tleave the share")
	w.Flush()
}

func (s *receiveSession) list(out io.Writer) {
	entries := browse.Project(s.nav.Entries(), s.controls)
	if len(entries) == 0 {
		fmt.Fprintln(out, "(nothing here)")
		return
	}
	printEntries(out, entries)
}

func printEntries(out io.Writer, entries []protocol.FileEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, e := range entries {
		size := "-"
		if !e.IsDir {
			size = browse.HumanSize(e.Size)
		}
		mtime := "-"
		if e.MTime > 0 {
			mtime = time.Unix(e.MTime, 0).Format("2006-01-02 15:04")
		}
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", size, mtime, name)
	}
	w.Flush()
}

func (s *receiveSession) refreshAndList(ctx context.Context, out io.Writer) error {
	if err := s.nav.Refresh(ctx); err != nil && !errors.Is(err, browse.ErrSuperseded) {
		return err
	}
	s.list(out)
	return nil
}

func (s *receiveSession) cd(ctx context.Context, out io.Writer, name string) error {
	if name == "" {
		return errors.New("usage: cd <folder>")
	}
	if name == ".." {
		return s.back(ctx, out)
	}
	if err := s.nav.EnterFolder(ctx, name); err != nil {
		return err
	}
	s.controls.Search = ""
	s.list(out)
	return nil
}

func (s *receiveSession) back(ctx context.Context, out io.Writer) error {
	if err := s.nav.Back(ctx); err != nil {
		return err
	}
	s.controls.Search = ""
	s.list(out)
	return nil
}

func (s *receiveSession) get(ctx context.Context, out io.Writer, name string) error {
	if name == "" {
		return errors.New("usage: get <file>")
	}
	url := s.client.DownloadURL(s.token, s.nav.Path(), name)
	dest, n, err := transfer.SaveURL(ctx, s.client, url, s.destDir, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s (%s)\n", dest, browse.HumanSize(n))
	return nil
}

func (s *receiveSession) clone(ctx context.Context, out io.Writer) error {
	url := s.client.ArchiveURL(s.token, s.nav.Path())
	fallback := "share.zip"
	if segs := s.nav.Segments(); len(segs) > 0 {
		fallback = segs[len(segs)-1] + ".zip"
	}
	fmt.Fprintln(out, "downloading archive...")
	dest, n, err := transfer.SaveURL(ctx, s.client, url, s.destDir, fallback)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "saved %s (%s)\n", dest, browse.HumanSize(n))
	return nil
}

func (s *receiveSession) put(ctx context.Context, out io.Writer, local string) error {
	if local == "" {
		return errors.New("usage: put <local file>")
	}
	f, err := os.Open(local)
	if err != nil {
		return err
	}
	defer f.Close()

	resp, err := s.uploads.Upload(ctx, filepath.Base(local), f)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "uploaded %s\n", resp.Filename)
	s.list(out)
	return nil
}

func (s *receiveSession) preview(ctx context.Context, out io.Writer, name string) error {
	if name == "" {
		return errors.New("usage: preview <file>")
	}
	rel := name
	if dir := s.nav.Path(); dir != "" {
		rel = path.Join(dir, name)
	}
	p, err := s.client.PreviewFile(ctx, s.token, rel)
	if err != nil {
		return err
	}
	if p.Body != nil {
		defer p.Body.Close()
		if strings.HasPrefix(p.Mime, "text/") {
			_, err = io.Copy(out, p.Body)
			fmt.Fprintln(out)
			return err
		}
		fmt.Fprintf(out, "%s (%s) is not viewable in the terminal, use \"get %s\"\n", name, p.Mime, name)
		return nil
	}
	fmt.Fprintf(out, "%s (%s): no inline preview, use \"get %s\"\n", p.Info.Name, p.Info.Mime, name)
	return nil
}

func (s *receiveSession) info(ctx context.Context, out io.Writer) error {
	resp, err := s.client.Info(ctx, s.token)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "token\t%s\n", resp.Token)
	fmt.Fprintf(w, "root\t%s\n", resp.Root)
	if resp.Created != "" {
		fmt.Fprintf(w, "created\t%s\n", resp.Created)
	}
	if resp.Expires != "" {
		fmt.Fprintf(w, "expires\t%s\n", resp.Expires)
	} else {
		fmt.Fprintf(w, "expires\tnever\n")
	}
	w.Flush()
	return nil
}

func (s *receiveSession) find(ctx context.Context, out io.Writer, query string) error {
	if query == "" {
		return errors.New("usage: find <text>")
	}
	resp, err := s.client.SearchRoot(ctx, s.token, query)
	if err != nil {
		return err
	}
	if len(resp.Items) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	printEntries(out, resp.Items)
	return nil
}

func (s *receiveSession) setSort(out io.Writer, arg string) error {
	key, ok := browse.ParseSortKey(arg)
	if !ok {
		return errors.New("usage: sort <name|size|modified>")
	}
	s.controls.Sort = key
	s.list(out)
	return nil
}

func (s *receiveSession) setFilter(out io.Writer, arg string) error {
	f, ok := browse.ParseTypeFilter(arg)
	if !ok {
		return errors.New("usage: filter <all|folders|files|images|docs>")
	}
	s.controls.Filter = f
	s.list(out)
	return nil
}
