// Package console renders Markdown answers for the terminal. A Renderer
// turns a whole document into ANSI text; Live renders a streamed answer
// block by block as fragments arrive. Themes, OSC 8 hyperlinks and the
// recent search History live here as well.
package console
