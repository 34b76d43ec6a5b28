package splitter

// DefaultSeparators is the generic priority table: paragraph breaks,
// then lines, then words, then single characters.
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Format-specific tables. Each is ordered from the coarsest structural
// boundary to the empty string, which splits into single characters and
// guarantees termination.
var (
	markdownSeparators = []string{
		// Headings from level two down. Setext-style headings are not
		// recognised.
		"\n## ",
		"\n### ",
		"\n#### ",
		"\n##### ",
		"\n###### ",
		// End of a fenced code block.
		"```\n\n",
		// Thematic breaks.
		"\n\n***\n\n",
		"\n\n---\n\n",
		"\n\n___\n\n",
		"\n\n",
		"\n",
		" ",
		"",
	}

	htmlSeparators = []string{
		// Block-level tags.
		"<body>",
		"<div>",
		"<p>",
		"<br>",
		"<li>",
		"<h1>",
		"<h2>",
		"<h3>",
		"<h4>",
		"<h5>",
		"<h6>",
		"<span>",
		"<table>",
		"<tr>",
		"<td>",
		"<th>",
		"<ul>",
		"<ol>",
		"<header>",
		"<footer>",
		"<nav>",
		// Document head.
		"<head>",
		"<style>",
		"<script>",
		"<meta>",
		"<title>",
		" ",
		"",
	}

	latexSeparators = []string{
		// Sectioning commands.
		"\n\\chapter{",
		"\n\\section{",
		"\n\\subsection{",
		"\n\\subsubsection{",
		// Environments.
		"\n\\begin{enumerate}",
		"\n\\begin{itemize}",
		"\n\\begin{description}",
		"\n\\begin{list}",
		"\n\\begin{quote}",
		"\n\\begin{quotation}",
		"\n\\begin{verse}",
		"\n\\begin{verbatim}",
		// Math environments.
		"\n\\begin{align}",
		"$$",
		"$",
		"\n\n",
		"\n",
		" ",
		"",
	}

	cppSeparators = []string{
		"\nclass ",
		"\nvoid ",
		"\nint ",
		"\nfloat ",
		"\ndouble ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\nswitch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	csharpSeparators = []string{
		"\ninterface ",
		"\nenum ",
		"\nimplements ",
		"\ndelegate ",
		"\nevent ",
		"\nclass ",
		"\nabstract ",
		"\npublic ",
		"\nprotected ",
		"\nprivate ",
		"\nstatic ",
		"\nreturn ",
		"\nif ",
		"\ncontinue ",
		"\nfor ",
		"\nforeach ",
		"\nwhile ",
		"\nswitch ",
		"\nbreak ",
		"\ncase ",
		"\nelse ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	goSeparators = []string{
		"\nfunc ",
		"\nvar ",
		"\nconst ",
		"\ntype ",
		"\nif ",
		"\nfor ",
		"\nswitch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	javaSeparators = []string{
		"\nclass ",
		"\npublic ",
		"\nprotected ",
		"\nprivate ",
		"\nstatic ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\nswitch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	jsSeparators = []string{
		"\nfunction ",
		"\nconst ",
		"\nlet ",
		"\nvar ",
		"\nclass ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\nswitch ",
		"\ncase ",
		"\ndefault ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	phpSeparators = []string{
		"\nfunction ",
		"\nclass ",
		"\nif ",
		"\nforeach ",
		"\nwhile ",
		"\ndo ",
		"\nswitch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	protoSeparators = []string{
		"\nmessage ",
		"\nservice ",
		"\nenum ",
		"\noption ",
		"\nimport ",
		"\nsyntax ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	pythonSeparators = []string{
		"\nclass ",
		"\ndef ",
		"\n\tdef ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	rstSeparators = []string{
		// Section title underlines.
		"\n=+\n",
		"\n-+\n",
		"\n\\*+\n",
		// Directive markers.
		"\n\n.. *\n\n",
		"\n\n",
		"\n",
		" ",
		"",
	}

	rubySeparators = []string{
		"\ndef ",
		"\nclass ",
		"\nif ",
		"\nunless ",
		"\nwhile ",
		"\nfor ",
		"\ndo ",
		"\nbegin ",
		"\nrescue ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	rustSeparators = []string{
		"\nfn ",
		"\nconst ",
		"\nlet ",
		"\nif ",
		"\nwhile ",
		"\nfor ",
		"\nloop ",
		"\nmatch ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	scalaSeparators = []string{
		"\nclass ",
		"\nobject ",
		"\ndef ",
		"\nval ",
		"\nvar ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\nmatch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	solSeparators = []string{
		"\npragma ",
		"\nusing ",
		"\ncontract ",
		"\ninterface ",
		"\nlibrary ",
		"\nconstructor ",
		"\ntype ",
		"\nfunction ",
		"\nevent ",
		"\nmodifier ",
		"\nerror ",
		"\nstruct ",
		"\nenum ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\ndo while ",
		"\nassembly ",
		"\n\n",
		"\n",
		" ",
		"",
	}

	swiftSeparators = []string{
		"\nfunc ",
		"\nclass ",
		"\nstruct ",
		"\nenum ",
		"\nif ",
		"\nfor ",
		"\nwhile ",
		"\ndo ",
		"\nswitch ",
		"\ncase ",
		"\n\n",
		"\n",
		" ",
		"",
	}
)

// ForExtension returns the separator table for a file extension. Unknown
// extensions fall back to DefaultSeparators.
func ForExtension(extension string) []string {
	switch extension {
	case "c", "cc", "cpp":
		return cppSeparators
	case "cs":
		return csharpSeparators
	case "go":
		return goSeparators
	case "java":
		return javaSeparators
	case "js", "mjs", "cjs":
		return jsSeparators
	case "php":
		return phpSeparators
	case "proto":
		return protoSeparators
	case "py":
		return pythonSeparators
	case "rst":
		return rstSeparators
	case "rb":
		return rubySeparators
	case "rs":
		return rustSeparators
	case "scala":
		return scalaSeparators
	case "swift":
		return swiftSeparators
	case "md", "mkd":
		return markdownSeparators
	case "tex":
		return latexSeparators
	case "htm", "html":
		return htmlSeparators
	case "sol":
		return solSeparators
	default:
		return DefaultSeparators
	}
}
