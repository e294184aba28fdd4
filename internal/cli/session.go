package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Micro215/AKEF-AIC-Calculator-sub000/pkg/session"
)

func (c *CLI) sessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage saved workspaces",
		Long: `Session manages saved solver workspaces: the target, rate, recipe
selections, node positions, and view state left behind by the
interactive viewer.`,
	}

	cmd.AddCommand(c.sessionListCommand())
	cmd.AddCommand(c.sessionShowCommand())
	cmd.AddCommand(c.sessionDeleteCommand())
	cmd.AddCommand(c.sessionCleanupCommand())

	return cmd
}

func (c *CLI) sessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionStore(func(st session.Store) error {
				ctx := cmd.Context()
				ids, err := st.List(ctx)
				if err != nil {
					return err
				}
				if len(ids) == 0 {
					printInfo("No saved workspaces")
					return nil
				}
				for _, id := range ids {
					sess, err := st.Get(ctx, id)
					if err != nil || sess == nil {
						continue
					}
					name := sess.Name
					if name == "" {
						name = StyleDim.Render("(unnamed)")
					}
					printDetail("%s  %s  %s at %g/min", sess.ID, name, sess.TargetID, sess.TargetRate)
				}
				return nil
			})
		},
	}
}

func (c *CLI) sessionShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionStore(func(st session.Store) error {
				sess, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if sess == nil {
					return fmt.Errorf("workspace %s not found", args[0])
				}
				printKeyValue("ID", sess.ID)
				printKeyValue("Name", sess.Name)
				printKeyValue("Target", fmt.Sprintf("%s at %g/min", sess.TargetID, sess.TargetRate))
				printKeyValue("Updated", sess.UpdatedAt.Format("2006-01-02 15:04:05"))
				printKeyValue("Expires", sess.ExpiresAt.Format("2006-01-02 15:04:05"))
				if len(sess.Positions) > 0 {
					printKeyValue("Positions", fmt.Sprintf("%d pinned nodes", len(sess.Positions)))
				}
				return nil
			})
		},
	}
}

func (c *CLI) sessionDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a saved workspace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionStore(func(st session.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted workspace %s", args[0])
				return nil
			})
		},
	}
}

func (c *CLI) sessionCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSessionStore(func(st session.Store) error {
				if err := st.Cleanup(cmd.Context()); err != nil {
					return err
				}
				printSuccess("Cleaned up expired workspaces")
				return nil
			})
		},
	}
}

// withSessionStore opens the default file store, runs fn, and closes it.
func withSessionStore(fn func(session.Store) error) error {
	st, err := session.NewFileStore("")
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}
