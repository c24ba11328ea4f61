package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoGrammarName       = newSemanticError("name is missing")
	semErrInvalidName         = newSemanticError("a name must be snake case: lower-case letters and digits joined by single underscores")
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrNoStartSymbol       = newSemanticError("the start symbol has no production")
	semErrUnusedProduction    = newSemanticError("unused production")
	semErrUnusedTerminal      = newSemanticError("unused terminal")
	semErrTermCannotBeSkipped = newSemanticError("a terminal used in productions cannot be skipped")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrDuplicateTerminal   = newSemanticError("duplicate terminal")
	semErrDuplicateFragment   = newSemanticError("duplicate fragment")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrErrSymIsReserved    = newSemanticError("symbol 'error' is reserved as a terminal symbol")
	semErrEmptyPattern        = newSemanticError("a terminal needs a non-empty pattern")
	semErrInvalidASTPosition  = newSemanticError("invalid AST position")
	semErrExpansionOfTerminal = newSemanticError("the expansion can be applied only to a non-terminal")
	semErrDuplicateAssoc      = newSemanticError("associativity and precedence cannot be specified multiple times for a symbol")
	semErrUndefinedPrec       = newSemanticError("symbol must have precedence")
	semErrInvalidSync         = newSemanticError("a synchronizing symbol must be a terminal that appears in productions")
	semErrInvalidAssoc        = newSemanticError("associativity can be applied only to terminals")
)
