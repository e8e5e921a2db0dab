/* Package compiler implements a single-pass compiler front end for MEX, a
small imperative language in the family of block-structured, statically
typed languages with byte/word/dword integer types, fixed-size arrays,
struct types, strings, and user-defined functions.

Source text passes through four stages, each its own subpackage:

  - internal/lexer scans source into a internal/token.Token stream.
  - internal/parser drives that stream through a recursive-descent
    realization of MEX's grammar, invoking internal/sema at each
    rule's reduction point exactly as an LALR(1) parser's semantic
    actions would fire.
  - internal/sema resolves scopes and symbols (internal/symtab), checks
    and folds expressions (internal/dataobj, internal/types), and emits
    three-address quads (internal/quad) including eagerly-emitted,
    later-patched jump targets for if/while/do-while/for/goto.
  - internal/quadio serializes the resulting quad buffers and symbol
    table for a downstream back end.

Compile is the package's single entry point, wiring all four stages and
reporting diagnostics through internal/diag.
*/
package compiler
