package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/directory-admin/internal/apiclient"
	"github.com/jwalitptl/directory-admin/internal/directory"
	"github.com/jwalitptl/directory-admin/internal/notify"
	"github.com/jwalitptl/directory-admin/internal/store"
	"github.com/jwalitptl/directory-admin/internal/view"
	"github.com/jwalitptl/directory-admin/pkg/logger"
	"github.com/jwalitptl/directory-admin/pkg/messaging"
	"github.com/jwalitptl/directory-admin/pkg/messaging/redis"
)

var resourceNames = []string{
	directory.ResDoctors,
	directory.ResLabs,
	directory.ResTests,
	directory.ResDiseases,
	directory.ResSpecializations,
	directory.ResTreatments,
	directory.ResProfiles,
}

// app builds the directory on first use so --help works without any
// environment.
type app struct {
	load   func() (envConfig, error)
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	dir    *directory.Directory
	broker messaging.Broker
}

func (a *app) directory() (*directory.Directory, error) {
	if a.dir != nil {
		return a.dir, nil
	}
	env, err := a.load()
	if err != nil {
		return nil, err
	}

	log := logger.NewLogger(&logger.Config{Level: logger.ParseLevel(env.LogLevel), Output: a.errOut})
	client, err := apiclient.New(apiclient.Config{
		BaseURL:   env.BaseURI,
		Timeout:   env.Timeout,
		UserAgent: "dashctl",
	}, log)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Multi{termNotifier{out: a.errOut}, notify.NewLog(log)}
	if env.RedisURL != "" {
		b, err := redis.NewRedisBroker(redis.Config{URL: env.RedisURL}, &log.ZL)
		if err != nil {
			return nil, err
		}
		a.broker = b
		notifiers = append(notifiers, notify.NewBroker(b, notify.BrokerConfig{
			Channel: env.RedisChannel,
			Source:  "dashctl",
		}, log, nil))
	}

	a.dir = directory.New(client, directory.Options{
		Notifier:     notifiers,
		Logger:       log,
		AssetBaseURL: env.AssetBaseURL,
	})
	return a.dir, nil
}

func (a *app) close() {
	if a.broker != nil {
		_ = a.broker.Close()
	}
}

func (a *app) resource(name string) (directory.Resource, error) {
	dir, err := a.directory()
	if err != nil {
		return nil, err
	}
	res, ok := dir.Resource(name)
	if !ok {
		return nil, fmt.Errorf("unknown resource %q", name)
	}
	return res, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newRootCmd(load func() (envConfig, error), in io.Reader, out, errOut io.Writer) *cobra.Command {
	a := &app{load: load, in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "dashctl",
		Short:         "Manage the healthcare directory from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	for _, name := range resourceNames {
		cmd := resourceCmd(a, name)
		if name == directory.ResDoctors {
			cmd.AddCommand(verifyCmd(a), exportCmd(a), tableCmd(a))
		}
		root.AddCommand(cmd)
	}
	return root
}

func resourceCmd(a *app, name string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("Manage %s", name),
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List %s", name),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := a.resource(name)
			if err != nil {
				return err
			}
			if err := res.Load(cmd.Context()); err != nil {
				return err
			}
			return a.print(res.Rows())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: fmt.Sprintf("Show one of %s", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resource(name)
			if err != nil {
				return err
			}
			row, err := res.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(row)
		},
	})

	cmd.AddCommand(mutateCmd(a, name, "create", cobra.NoArgs))
	cmd.AddCommand(mutateCmd(a, name, "update <id>", cobra.ExactArgs(1)))

	var yes bool
	del := &cobra.Command{
		Use:   "delete <id>",
		Short: fmt.Sprintf("Delete one of %s", name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resource(name)
			if err != nil {
				return err
			}
			var confirm store.Confirmer = newStdinConfirmer(a.in, a.errOut)
			if yes {
				confirm = store.AlwaysConfirm
			}
			err = res.Delete(cmd.Context(), args[0], confirm)
			if errors.Is(err, store.ErrDeclined) {
				fmt.Fprintln(a.errOut, "Deletion cancelled.")
				return nil
			}
			return err
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	cmd.AddCommand(del)

	return cmd
}

func mutateCmd(a *app, name, use string, args cobra.PositionalArgs) *cobra.Command {
	var sets, files []string
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s %s from --set and --file values", use, name),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.resource(name)
			if err != nil {
				return err
			}
			d, err := buildDraft(res.Form(), sets, files)
			if err != nil {
				return err
			}

			var row any
			if len(args) == 0 {
				row, err = res.Create(cmd.Context(), d)
			} else {
				row, err = res.Update(cmd.Context(), args[0], d)
			}
			if err != nil {
				return err
			}
			return a.print(row)
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field value as key=value; nested as group.field=value")
	cmd.Flags().StringArrayVar(&files, "file", nil, "file field as field=path")
	return cmd
}

func verifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Toggle a doctor's verified flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			if _, ok := dir.Doctors.Find(args[0]); !ok {
				if err := dir.Doctors.FetchAll(cmd.Context()); err != nil {
					return err
				}
			}
			doc, err := dir.Doctors.ToggleVerified(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(view.NewDoctorRow(doc))
		},
	}
}

func tableFlags(cmd *cobra.Command, q *view.TableQuery) {
	cmd.Flags().StringVar(&q.Search, "search", "", "match name or specialization")
	cmd.Flags().StringVar(&q.Status, "status", view.FilterAll, "all, verified or not-verified")
}

func tableCmd(a *app) *cobra.Command {
	var q view.TableQuery
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Show one page of the admin doctor table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			if err := dir.Doctors.FetchAll(cmd.Context()); err != nil {
				return err
			}
			return a.print(view.DoctorTable(view.DoctorRows(dir.Doctors.Items()), q))
		},
	}
	tableFlags(cmd, &q)
	cmd.Flags().StringVar(&q.Sort, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&q.Desc, "desc", false, "sort descending")
	cmd.Flags().IntVar(&q.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&q.PerPage, "per-page", view.DefaultPerPage, "rows per page")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		q    view.TableQuery
		path string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the doctor table as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir, err := a.directory()
			if err != nil {
				return err
			}
			if err := dir.Doctors.FetchAll(cmd.Context()); err != nil {
				return err
			}
			rows := view.FilterDoctors(view.DoctorRows(dir.Doctors.Items()), q)

			w := a.out
			if path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return view.WriteDoctorsCSV(w, rows)
		},
	}
	tableFlags(cmd, &q)
	cmd.Flags().StringVarP(&path, "out", "o", "", "write to a file instead of stdout")
	return cmd
}
