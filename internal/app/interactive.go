package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/KickHuynh/XuLyAnhSo/internal/imageio"
	"github.com/KickHuynh/XuLyAnhSo/internal/models"
	"github.com/KickHuynh/XuLyAnhSo/internal/operations"
	"github.com/KickHuynh/XuLyAnhSo/internal/processing/chain"
	"github.com/KickHuynh/XuLyAnhSo/internal/session"
)

const sessionHelp = `commands:
  load <path>        open an image and clear history
  preview <op>       render op on the current image in the background
  apply <op>         run op and commit the result
  undo               restore the image before the last apply
  reset              return to the loaded image
  history            list committed operations, newest first
  last               show the most recent committed operation
  chain add <op>     append op to the pending chain
  chain insert <i> <op>
                     insert op before position i (1-based)
  chain remove <i>   drop the op at position i
  chain list         show the pending chain
  chain apply        run the pending chain and commit it as one step
  chain clear        empty the pending chain
  save [path]        write the current image
  wait               block until the pending preview finishes
  ops                list operator names
  help
  quit`

// Interactive drives a Session from line commands read from r. Previews are
// written to "<name>_preview.png" in the output directory by a last-one-wins
// worker, so a burst of preview commands renders only the latest.
type Interactive struct {
	app    *Application
	sess   *session.Session
	worker *session.Worker
	out    io.Writer
	outMu  sync.Mutex

	mu     sync.Mutex
	source string

	// pending is edited by the chain commands; Run executes commands one at
	// a time, so it needs no lock of its own.
	pending *chain.ProcessingChain
}

func (a *Application) NewInteractive(out io.Writer) *Interactive {
	in := &Interactive{
		app:  a,
		sess:    session.New(a.Config.History.Depth, a.Log),
		out:     out,
		pending: chain.NewProcessingChain(nil),
	}
	in.worker = session.NewWorker(in.deliverPreview, a.Log)
	a.Shutdown.Register(in)
	return in
}

// Shutdown stops the preview worker.
func (in *Interactive) Shutdown() {
	in.worker.Close()
}

func (in *Interactive) printf(format string, args ...interface{}) {
	in.outMu.Lock()
	defer in.outMu.Unlock()
	fmt.Fprintf(in.out, format+"\n", args...)
}

// Run reads commands until EOF, "quit" or ctx is cancelled. Command errors
// are printed and do not stop the loop.
func (in *Interactive) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		if cmd == "quit" || cmd == "exit" {
			break
		}
		if err := in.Exec(ctx, cmd, arg); err != nil {
			in.printf("error: %v", err)
		}
	}
	in.worker.Wait()
	return scanner.Err()
}

// Exec runs a single command.
func (in *Interactive) Exec(ctx context.Context, cmd, arg string) error {
	switch cmd {
	case "load":
		return in.load(arg)
	case "preview":
		return in.preview(arg)
	case "apply":
		step, err := in.app.Processor.Step(arg, in.app.Config.Defaults)
		if err != nil {
			return err
		}
		out, err := in.sess.Apply(ctx, step)
		if err != nil {
			return err
		}
		in.printf("applied %s (%dx%dx%d)", step.Name(), out.Width, out.Height, out.Channels)
	case "undo":
		label, ok := in.sess.Undo()
		if !ok {
			in.printf("nothing to undo")
			return nil
		}
		in.printf("undid %s", label)
	case "reset":
		if err := in.sess.Reset(); err != nil {
			return err
		}
		in.printf("reset")
	case "history":
		for _, l := range in.sess.History().Labels() {
			in.printf("  %s", l)
		}
	case "last":
		e, ok := in.sess.History().Peek()
		if !ok {
			in.printf("history is empty")
			return nil
		}
		in.printf("last: %s at %s", e.Label, e.At.Format(time.TimeOnly))
	case "chain":
		return in.chainCommand(ctx, arg)
	case "save":
		return in.save(arg)
	case "wait":
		in.worker.Wait()
	case "ops":
		in.printf("%s", strings.Join(operations.Names(), " "))
	case "help":
		in.printf("%s", sessionHelp)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (in *Interactive) load(path string) error {
	if path == "" {
		return fmt.Errorf("load needs a path")
	}
	img, err := in.app.LoadImage(path)
	if err != nil {
		return err
	}
	if err := in.sess.Load(img); err != nil {
		return err
	}
	in.worker.Cancel()
	in.mu.Lock()
	in.source = path
	in.mu.Unlock()
	in.printf("loaded %s (%dx%dx%d)", filepath.Base(path), img.Width, img.Height, img.Channels)
	return nil
}

func (in *Interactive) preview(spec string) error {
	step, err := in.app.Processor.Step(spec, in.app.Config.Defaults)
	if err != nil {
		return err
	}
	if _, err := in.sess.Current(); err != nil {
		return err
	}
	in.worker.Submit(func(ctx context.Context) (*models.Image, error) {
		return in.sess.Preview(ctx, step)
	})
	return nil
}

func (in *Interactive) chainCommand(ctx context.Context, arg string) error {
	sub, rest, _ := strings.Cut(arg, " ")
	rest = strings.TrimSpace(rest)
	switch sub {
	case "add":
		step, err := in.app.Processor.Step(rest, in.app.Config.Defaults)
		if err != nil {
			return err
		}
		in.pending.AddStep(step)
	case "insert":
		pos, spec, _ := strings.Cut(rest, " ")
		i, err := strconv.Atoi(pos)
		if err != nil {
			return fmt.Errorf("chain insert needs a position, got %q", pos)
		}
		step, err := in.app.Processor.Step(strings.TrimSpace(spec), in.app.Config.Defaults)
		if err != nil {
			return err
		}
		if err := in.pending.InsertStep(i-1, step); err != nil {
			return err
		}
	case "remove":
		i, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("chain remove needs a position, got %q", rest)
		}
		if err := in.pending.RemoveStep(i - 1); err != nil {
			return err
		}
	case "list", "":
		if in.pending.StepCount() == 0 {
			in.printf("chain is empty")
			return nil
		}
		for i, name := range in.pending.GetStepNames() {
			in.printf("  %d. %s", i+1, name)
		}
		return nil
	case "apply":
		if in.pending.StepCount() == 0 {
			return fmt.Errorf("chain is empty")
		}
		out, err := in.sess.Apply(ctx, in.pending)
		if err != nil {
			return err
		}
		in.printf("applied chain of %d (%dx%dx%d)", in.pending.StepCount(), out.Width, out.Height, out.Channels)
		return nil
	case "clear":
		in.pending = chain.NewProcessingChain(nil)
	default:
		return fmt.Errorf("unknown chain command %q, try help", sub)
	}
	in.printf("chain: %d step(s)", in.pending.StepCount())
	return nil
}

func (in *Interactive) deliverPreview(res session.Result) {
	if res.Err != nil {
		in.printf("preview failed: %v", res.Err)
		return
	}
	if err := in.app.ensureOutputDir(); err != nil {
		in.printf("preview failed: %v", err)
		return
	}
	path := imageio.OutputPath(in.app.Config.Paths.OutputDir, in.sourceName(), "preview", ".png")
	if err := in.app.Codec.WriteFile(path, res.Image); err != nil {
		in.printf("preview failed: %v", err)
		return
	}
	in.printf("preview %d written to %s", res.Seq, path)
}

func (in *Interactive) save(path string) error {
	cur, err := in.sess.Current()
	if err != nil {
		return err
	}
	if path == "" {
		if err := in.app.ensureOutputDir(); err != nil {
			return err
		}
		path = imageio.OutputPath(in.app.Config.Paths.OutputDir, in.sourceName(), "session", ".png")
	}
	if err := in.app.Codec.WriteFile(path, cur); err != nil {
		return err
	}
	in.printf("saved %s", path)
	return nil
}

func (in *Interactive) sourceName() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.source == "" {
		return "image.png"
	}
	return in.source
}
