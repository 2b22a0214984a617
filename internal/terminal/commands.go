package terminal

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/foliokit/folioterm/internal/vfs"
)

func (in *Interpreter) registerBuiltins() {
	in.register(&command{
		name: "ls", usage: "ls [path]", pathArgs: true,
		summary: "list directory contents",
		run:     cmdLs,
	})
	in.register(&command{
		name: "cd", usage: "cd [path]", pathArgs: true,
		summary: "change the working directory",
		run:     cmdCd,
	})
	in.register(&command{
		name: "cat", usage: "cat <file>", pathArgs: true,
		summary: "print file contents",
		run:     cmdCat,
	})
	in.register(&command{
		name: "pwd", usage: "pwd",
		summary: "print the working directory",
		run:     cmdPwd,
	})
	in.register(&command{
		name: "help", usage: "help",
		summary: "list available commands",
		run:     in.cmdHelp,
	})
	in.register(&command{
		name: "clear", usage: "clear",
		summary: "clear the screen",
		run:     func(*Context, []string) Result { return Result{Clear: true} },
	})
	in.register(&command{
		name: "echo", usage: "echo [text...]",
		summary: "print text",
		run: func(_ *Context, args []string) Result {
			return Result{Lines: []OutputLine{Output(strings.Join(args, " "))}}
		},
	})
	in.register(&command{
		name: "tree", usage: "tree [path]", pathArgs: true,
		summary: "show a directory tree",
		run:     cmdTree,
	})
	in.register(&command{
		name: "history", usage: "history",
		summary: "show command history",
		run:     cmdHistory,
	})
	in.register(&command{
		name: "file", usage: "file <path>", pathArgs: true,
		summary: "detect the type of a file",
		run:     cmdFile,
	})
	in.register(&command{
		name: "whoami", usage: "whoami",
		summary: "print the site owner",
		run:     cmdWhoami,
	})
	in.register(&command{
		name: "open", usage: "open <file>", pathArgs: true,
		summary: "open the link inside a file",
		run:     cmdOpen,
	})
}

// fsError formats a filesystem failure the way a shell prints it.
func fsError(cmd, arg string, err error) OutputLine {
	return Errorf("%s: %s: %s", cmd, arg, vfs.Message(err))
}

func usageError(c string, usage string) Result {
	return Result{Lines: []OutputLine{Errorf("%s: usage: %s", c, usage)}}
}

func cmdLs(ctx *Context, args []string) Result {
	target := ""
	if len(args) > 1 {
		return usageError("ls", "ls [path]")
	}
	if len(args) == 1 {
		target = args[0]
	}

	// A glob in the final segment filters the listing. The separator stays
	// with the directory part so an absolute glob keeps its leading slash.
	dirExpr, base := target, ""
	if strings.ContainsAny(lastSegment(target), "*?[{") {
		if idx := strings.LastIndex(target, "/"); idx >= 0 {
			dirExpr, base = target[:idx+1], target[idx+1:]
		} else {
			dirExpr, base = "", target
		}
	}

	dirPath, err := ctx.Tree.ResolveDir(ctx.Cwd, dirExpr)
	if err != nil {
		return Result{Lines: []OutputLine{fsError("ls", target, err)}}
	}

	var names []string
	if base != "" {
		names, err = ctx.Tree.ListGlob(dirPath, base)
	} else {
		names, err = ctx.Tree.List(dirPath)
	}
	if err != nil {
		return Result{Lines: []OutputLine{fsError("ls", target, err)}}
	}
	if base != "" && len(names) == 0 {
		return Result{Lines: []OutputLine{fsError("ls", target, vfs.ErrPathNotFound)}}
	}

	lines := make([]OutputLine, 0, len(names))
	for _, name := range names {
		lines = append(lines, Output(name))
	}
	return Result{Lines: lines}
}

func lastSegment(expr string) string {
	if idx := strings.LastIndex(expr, "/"); idx >= 0 {
		return expr[idx+1:]
	}
	return expr
}

func cmdCd(ctx *Context, args []string) Result {
	if len(args) > 1 {
		return usageError("cd", "cd [path]")
	}
	if len(args) == 0 || args[0] == "/" {
		return Result{Cwd: "/"}
	}
	path, err := ctx.Tree.ResolveDir(ctx.Cwd, args[0])
	if err != nil {
		return Result{Lines: []OutputLine{fsError("cd", args[0], err)}}
	}
	return Result{Cwd: path}
}

func cmdCat(ctx *Context, args []string) Result {
	if len(args) == 0 {
		return usageError("cat", "cat <file>")
	}
	var lines []OutputLine
	for _, arg := range args {
		path, err := ctx.Tree.Resolve(ctx.Cwd, arg)
		if err != nil {
			lines = append(lines, fsError("cat", arg, err))
			continue
		}
		text, err := ctx.Tree.Read(path)
		if err != nil {
			lines = append(lines, fsError("cat", arg, err))
			continue
		}
		for _, l := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			lines = append(lines, Output(l))
		}
	}
	return Result{Lines: lines}
}

func cmdPwd(ctx *Context, _ []string) Result {
	return Result{Lines: []OutputLine{Output(ctx.Cwd)}}
}

func (in *Interpreter) cmdHelp(_ *Context, _ []string) Result {
	names := make([]string, 0, len(in.commands))
	width := 0
	for name, c := range in.commands {
		names = append(names, name)
		if len(c.usage) > width {
			width = len(c.usage)
		}
	}
	sort.Strings(names)

	lines := []OutputLine{Info("available commands:")}
	for _, name := range names {
		c := in.commands[name]
		lines = append(lines, Outputf("  %-*s  %s", width, c.usage, c.summary))
	}
	return Result{Lines: lines}
}

func cmdTree(ctx *Context, args []string) Result {
	target := ""
	if len(args) > 1 {
		return usageError("tree", "tree [path]")
	}
	if len(args) == 1 {
		target = args[0]
	}
	path, err := ctx.Tree.ResolveDir(ctx.Cwd, target)
	if err != nil {
		return Result{Lines: []OutputLine{fsError("tree", target, err)}}
	}

	var lines []OutputLine
	dirs, files := 0, 0
	ctx.Tree.Walk(path, func(n *vfs.Node, depth int) {
		if depth == 0 {
			lines = append(lines, Output(path))
			return
		}
		name := n.Name
		if n.IsDir() {
			name += "/"
			dirs++
		} else {
			files++
		}
		lines = append(lines, Output(strings.Repeat("  ", depth)+name))
	})
	lines = append(lines, Outputf("%d directories, %d files", dirs, files))
	return Result{Lines: lines}
}

func cmdHistory(ctx *Context, _ []string) Result {
	lines := make([]OutputLine, 0, len(ctx.History))
	for i, entry := range ctx.History {
		lines = append(lines, Outputf("%3d  %s", i+1, entry))
	}
	return Result{Lines: lines}
}

func cmdFile(ctx *Context, args []string) Result {
	if len(args) != 1 {
		return usageError("file", "file <path>")
	}
	path, err := ctx.Tree.Resolve(ctx.Cwd, args[0])
	if err != nil {
		return Result{Lines: []OutputLine{fsError("file", args[0], err)}}
	}
	node, _ := ctx.Tree.Stat(path)
	if node.IsDir() {
		return Result{Lines: []OutputLine{Outputf("%s: directory", args[0])}}
	}
	mtype := mimetype.Detect([]byte(node.Content))
	return Result{Lines: []OutputLine{Outputf("%s: %s", args[0], mtype.String())}}
}

func cmdWhoami(ctx *Context, _ []string) Result {
	name := ctx.Owner.Name
	if name == "" {
		name = "guest"
	}
	return Result{Lines: []OutputLine{Output(name)}}
}

func cmdOpen(ctx *Context, args []string) Result {
	if len(args) != 1 {
		return usageError("open", "open <file>")
	}
	path, err := ctx.Tree.Resolve(ctx.Cwd, args[0])
	if err != nil {
		return Result{Lines: []OutputLine{fsError("open", args[0], err)}}
	}
	text, err := ctx.Tree.Read(path)
	if err != nil {
		return Result{Lines: []OutputLine{fsError("open", args[0], err)}}
	}
	for _, tok := range strings.Fields(text) {
		if strings.HasPrefix(tok, "http://") || strings.HasPrefix(tok, "https://") {
			return Result{Lines: []OutputLine{Info(fmt.Sprintf("Opening %s", tok))}}
		}
	}
	return Result{Lines: []OutputLine{Errorf("open: %s: no link found", args[0])}}
}
