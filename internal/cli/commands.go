package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Dias221467/bucket-list/internal/bucket"
	"github.com/Dias221467/bucket-list/internal/models"
	"github.com/Dias221467/bucket-list/internal/persistence"
	"github.com/Dias221467/bucket-list/internal/ui"
	"github.com/spf13/cobra"
)

// session is one hydrated store plus its synchronizer.
type session struct {
	store  *bucket.Store
	syncer *persistence.Synchronizer
}

// openSession hydrates a store from the endpoint. One-shot commands have no
// local state worth keeping, so a failed load is an error rather than an
// empty list that would overwrite the server on the next write.
func openSession(ctx context.Context, opts *options) (*session, error) {
	endpoint, err := persistence.NewHTTPEndpoint(opts.endpoint, opts.timeout)
	if err != nil {
		return nil, err
	}

	store := bucket.NewStore()
	syncer := persistence.New(store, endpoint, persistence.WithTimeout(opts.timeout))
	syncer.Start(ctx)

	select {
	case <-syncer.Ready():
	case <-ctx.Done():
		syncer.Stop()
		return nil, ctx.Err()
	}

	status := syncer.Status()
	switch {
	case status.State == persistence.StateLocalOnly:
		syncer.Stop()
		return nil, fmt.Errorf("%w: %s", persistence.ErrEndpointUnreachable, opts.endpoint)
	case status.LoadError != nil:
		syncer.Stop()
		return nil, fmt.Errorf("could not load bucket list: %w", status.LoadError)
	case status.Dropped > 0:
		syncer.Stop()
		return nil, fmt.Errorf("stored bucket list has %d unreadable items; refusing to overwrite it", status.Dropped)
	}

	return &session{store: store, syncer: syncer}, nil
}

// commit waits for pending writes and stops the synchronizer.
func (s *session) commit(ctx context.Context) error {
	defer s.syncer.Stop()

	if err := s.syncer.Flush(ctx); err != nil {
		return fmt.Errorf("could not sync changes: %w", err)
	}
	if err := s.syncer.Status().LastError; err != nil {
		return fmt.Errorf("could not sync changes: %w", err)
	}
	return nil
}

func (s *session) close() {
	s.syncer.Stop()
}

// itemAt resolves a 1-based index over the "all" view.
func (s *session) itemAt(arg string) (models.GoalItem, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return models.GoalItem{}, fmt.Errorf("not a number: %s", arg)
	}
	all := s.store.Filter(bucket.FilterAll)
	if n < 1 || n > len(all) {
		return models.GoalItem{}, fmt.Errorf("no item #%d (have %d)", n, len(all))
	}
	return all[n-1], nil
}

func newListCmd(opts *options) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List goals with overall progress",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := bucket.ParseFilter(filter)
			if err != nil {
				return err
			}

			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer s.close()

			printList(cmd.OutOrStdout(), s.store, f)
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "which goals to show (all, active, completed)")
	return cmd
}

func newAddCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text...>",
		Short: "Add a goal",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}

			item, ok := s.store.Add(strings.Join(args, " "))
			if !ok {
				s.close()
				return fmt.Errorf("goal text cannot be empty")
			}
			if err := s.commit(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✔ added: "+item.Text))
			return nil
		},
	}
}

func newDoneCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "done <n>",
		Short: "Toggle completion of the goal at 1-based index n",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}

			target, err := s.itemAt(args[0])
			if err != nil {
				s.close()
				return err
			}
			item, _ := s.store.Toggle(target.ID)
			if err := s.commit(cmd.Context()); err != nil {
				return err
			}

			if item.Completed() {
				fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✔ completed: "+item.Text))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), ui.PendingStyle.Render("↺ reopened: "+item.Text))
			}
			return nil
		},
	}
}

func newRmCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <n>",
		Aliases: []string{"remove"},
		Short:   "Remove the goal at 1-based index n",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts)
			if err != nil {
				return err
			}

			target, err := s.itemAt(args[0])
			if err != nil {
				s.close()
				return err
			}
			s.store.Delete(target.ID)
			if err := s.commit(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("✔ removed: "+target.Text))
			return nil
		},
	}
}

// printList writes the header, progress and the goals selected by f. Goals
// keep their position in the "all" view so the numbers work with done and rm.
func printList(w io.Writer, store *bucket.Store, f bucket.FilterType) {
	views := store.Views()

	lines := []string{
		ui.Header(views),
		ui.ProgressLine(ui.NewProgressBar(ui.DefaultBarWidth), views),
		"",
	}

	position := make(map[string]int, views.Total())
	for i, item := range store.Filter(bucket.FilterAll) {
		position[item.ID] = i + 1
	}

	shown := store.Filter(f)
	if len(shown) == 0 {
		lines = append(lines, ui.MutedStyle.Render(emptyMessage(f)))
	}
	for _, item := range shown {
		lines = append(lines, fmt.Sprintf("%3d. %s", position[item.ID], ui.ItemLine(item)))
	}

	fmt.Fprintln(w, ui.PanelStyle.Render(strings.Join(lines, "\n")))
}

func emptyMessage(f bucket.FilterType) string {
	switch f {
	case bucket.FilterActive:
		return "Nothing left to do."
	case bucket.FilterCompleted:
		return "Nothing completed yet."
	}
	return "No goals yet. Add one with: bucket add <text>"
}

func errorLine(err error) string {
	return ui.ErrorStyle.Render("✖ " + err.Error())
}
