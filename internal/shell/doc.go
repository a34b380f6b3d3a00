// Package shell implements the sandboxed terminal shown on the site's error
// pages.
//
// A Session owns everything the terminal does: the startup reveal sequence,
// the input reader with history recall, the command dispatcher over a fixed
// directory table, and the append-only output log. It never touches a real
// filesystem or process; the only state change a command can make is the
// current directory.
//
// Sessions do not render anything themselves. Every visible change is sent
// to a Surface as an Effect (append an entry, reveal a block, navigate, ...);
// the WebSocket transport forwards effects to the browser and the errshell
// command draws them in a terminal.
//
// Commands:
//
//	help, clear, ls, pwd, whoami, cd <path>, cat <file>, echo, history,
//	sudo retry, exit
//
// Example Usage:
//
//	s := shell.NewSession(surface, shell.Prompt{Dir: "~/scorchOS", Command: "cat 404.blade.php"})
//	s.Start(ctx) // reveal blocks, then accept input
//	s.Submit("ls")
//	s.Navigate(shell.Up)
package shell
