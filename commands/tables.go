package commands

// Phrases are matched in declaration order. Where one phrase is a prefix of
// another ("punto" and "punto y coma"), the longer one is declared first.

var english = []Command{
	{"period", Lit(".")},
	{"comma", Lit(",")},
	{"exclamation mark", Lit("!")},
	{"question mark", Lit("?")},
	{"colon", Lit(":")},
	{"semicolon", Lit(";")},
	{"dash", Lit("-")},
	{"hyphen", Lit("-")},
	{"at sign", Lit("@")},
	{"at mention", Lit("@")},
	{"open parenthesis", Lit("(")},
	{"close parenthesis", Lit(")")},
	{"open quote", Lit(`"`)},
	{"close quote", Lit(`"`)},
	{"open single quote", Lit("'")},
	{"close single quote", Lit("'")},
	{"equal sign", Lit("=")},

	{"backspace", Key("backspace")},
	{"press enter", Key("enter")},
	{"new line", Key("enter")},
	{"press paste", Key("ctrl+v")},
	{"press copy", Key("ctrl+c")},
	{"press save", Key("ctrl+s")},
	{"press undo", Key("ctrl+z")},
	{"press redo", Key("ctrl+y")},
	{"press cut", Key("ctrl+x")},
	{"select all", Key("ctrl+a")},
	{"select none", Key("right")},
	{"deselect", Key("right")},
	{"press space", Key("space")},
	{"press tab", Key("tab")},
	{"delete that", DeleteWord()},
	{"remove that", DeleteWord()},
	{"press rewrite", Mode(ModeRewrite)},
	{"correct the grammar", Mode(ModeGrammar)},
	{"correct grammar", Mode(ModeGrammar)},
	{"pause voice typing", Mode(ModePause)},
	{"pause dictation", Mode(ModePause)},
	{"stop voice typing", Mode(ModePause)},
	{"stop dictation", Mode(ModePause)},
	{"stop listening", Mode(ModePause)},
	{"stop dictating", Mode(ModePause)},
	{"stop voice mode", Mode(ModePause)},
	{"pause voice mode", Mode(ModePause)},
}

var spanish = []Command{
	{"punto y coma", Lit(";")},
	{"dos puntos", Lit(":")},
	{"punto", Lit(".")},
	{"coma", Lit(",")},
	{"signo de exclamación", Lit("!")},
	{"exclamación", Lit("!")},
	{"signo de interrogación", Lit("?")},
	{"interrogación", Lit("?")},
	{"guión", Lit("-")},
	{"arroba", Lit("@")},
	{"abrir paréntesis", Lit("(")},
	{"cerrar paréntesis", Lit(")")},
	{"abrir comillas", Lit(`"`)},
	{"cerrar comillas", Lit(`"`)},
	{"signo igual", Lit("=")},

	{"borrar", Key("backspace")},
	{"retroceso", Key("backspace")},
	{"presionar enter", Key("enter")},
	{"presionar intro", Key("enter")},
	{"presionar nueva línea", Key("enter")},
	{"presionar pegar", Key("ctrl+v")},
	{"presionar copiar", Key("ctrl+c")},
	{"presionar guardar", Key("ctrl+s")},
	{"presionar deshacer", Key("ctrl+z")},
	{"presionar rehacer", Key("ctrl+y")},
	{"presionar cortar", Key("ctrl+x")},
	{"seleccionar todo", Key("ctrl+a")},
	{"presionar espacio", Key("space")},
	{"presionar tabulador", Key("tab")},
	{"eliminar eso", DeleteWord()},
	{"quitar eso", DeleteWord()},
	{"presionar reescribir", Mode(ModeRewrite)},
	{"presionar corregir", Mode(ModeRewrite)},
	{"pausar dictado", Mode(ModePause)},
	{"detener dictado", Mode(ModePause)},
	{"parar dictado", Mode(ModePause)},
	{"dejar de escuchar", Mode(ModePause)},
}

var french = []Command{
	{"point-virgule", Lit(";")},
	{"point d'exclamation", Lit("!")},
	{"point d'interrogation", Lit("?")},
	{"deux points", Lit(":")},
	{"point", Lit(".")},
	{"virgule", Lit(",")},
	{"tiret", Lit("-")},
	{"trait d'union", Lit("-")},
	{"arobase", Lit("@")},
	{"ouvrir parenthèse", Lit("(")},
	{"fermer parenthèse", Lit(")")},
	{"ouvrir guillemets", Lit(`"`)},
	{"fermer guillemets", Lit(`"`)},
	{"signe égal", Lit("=")},

	{"effacer ça", DeleteWord()},
	{"supprimer ça", DeleteWord()},
	{"effacer", Key("backspace")},
	{"retour arrière", Key("backspace")},
	{"appuyer sur entrée", Key("enter")},
	{"appuyer sur nouvelle ligne", Key("enter")},
	{"appuyer sur à la ligne", Key("enter")},
	{"appuyer sur coller", Key("ctrl+v")},
	{"appuyer sur copier", Key("ctrl+c")},
	{"appuyer sur enregistrer", Key("ctrl+s")},
	{"appuyer sur sauvegarder", Key("ctrl+s")},
	{"appuyer sur annuler", Key("ctrl+z")},
	{"appuyer sur rétablir", Key("ctrl+y")},
	{"appuyer sur couper", Key("ctrl+x")},
	{"tout sélectionner", Key("ctrl+a")},
	{"appuyer sur espace", Key("space")},
	{"appuyer sur tabulation", Key("tab")},
	{"appuyer sur réécrire", Mode(ModeRewrite)},
	{"appuyer sur corriger", Mode(ModeRewrite)},
	{"pause dictée", Mode(ModePause)},
	{"arrêter dictée", Mode(ModePause)},
	{"stop dictée", Mode(ModePause)},
	{"arrêter d'écouter", Mode(ModePause)},
}

var german = []Command{
	{"punkt", Lit(".")},
	{"komma", Lit(",")},
	{"ausrufezeichen", Lit("!")},
	{"fragezeichen", Lit("?")},
	{"doppelpunkt", Lit(":")},
	{"semikolon", Lit(";")},
	{"strichpunkt", Lit(";")},
	{"bindestrich", Lit("-")},
	{"gedankenstrich", Lit("-")},
	{"at zeichen", Lit("@")},
	{"klammeraffe", Lit("@")},
	{"klammer auf", Lit("(")},
	{"klammer zu", Lit(")")},
	{"anführungszeichen auf", Lit(`"`)},
	{"anführungszeichen zu", Lit(`"`)},
	{"gleich zeichen", Lit("=")},

	{"das löschen", DeleteWord()},
	{"löschen", Key("backspace")},
	{"rücktaste", Key("backspace")},
	{"drücke eingabe", Key("enter")},
	{"drücke enter", Key("enter")},
	{"drücke neue zeile", Key("enter")},
	{"drücke einfügen", Key("ctrl+v")},
	{"drücke kopieren", Key("ctrl+c")},
	{"drücke speichern", Key("ctrl+s")},
	{"drücke rückgängig", Key("ctrl+z")},
	{"drücke wiederholen", Key("ctrl+y")},
	{"drücke ausschneiden", Key("ctrl+x")},
	{"alles auswählen", Key("ctrl+a")},
	{"alles markieren", Key("ctrl+a")},
	{"auswahl aufheben", Key("right")},
	{"nichts auswählen", Key("right")},
	{"drücke leerzeichen", Key("space")},
	{"drücke tabulator", Key("tab")},
	{"entfernen", DeleteWord()},
	{"drücke umschreiben", Mode(ModeRewrite)},
	{"drücke korrigieren", Mode(ModeRewrite)},
	{"diktat pausieren", Mode(ModePause)},
	{"diktat stoppen", Mode(ModePause)},
	{"aufhören zu hören", Mode(ModePause)},
}

var italian = []Command{
	{"punto esclamativo", Lit("!")},
	{"punto interrogativo", Lit("?")},
	{"punto e virgola", Lit(";")},
	{"due punti", Lit(":")},
	{"punto", Lit(".")},
	{"virgola", Lit(",")},
	{"trattino", Lit("-")},
	{"chiocciola", Lit("@")},
	{"apri parentesi", Lit("(")},
	{"chiudi parentesi", Lit(")")},
	{"apri virgolette", Lit(`"`)},
	{"chiudi virgolette", Lit(`"`)},
	{"apri apice", Lit("'")},
	{"chiudi apice", Lit("'")},
	{"segno uguale", Lit("=")},

	{"cancella", Key("backspace")},
	{"premi invio", Key("enter")},
	{"premi a capo", Key("enter")},
	{"premi incolla", Key("ctrl+v")},
	{"premi copia", Key("ctrl+c")},
	{"premi salva", Key("ctrl+s")},
	{"premi annulla", Key("ctrl+z")},
	{"premi ripeti", Key("ctrl+y")},
	{"premi taglia", Key("ctrl+x")},
	{"seleziona tutto", Key("ctrl+a")},
	{"seleziona nessuno", Key("right")},
	{"deseleziona", Key("right")},
	{"premi spazio", Key("space")},
	{"premi tab", Key("tab")},
	{"elimina", DeleteWord()},
	{"rimuovi", DeleteWord()},
	{"premi riscrivi", Mode(ModeRewrite)},
	{"premi correggi", Mode(ModeRewrite)},
	{"pausa dettatura", Mode(ModePause)},
	{"ferma dettatura", Mode(ModePause)},
	{"stop dettatura", Mode(ModePause)},
	{"smetti di ascoltare", Mode(ModePause)},
}

var builtin = map[string][]Command{
	"en": english,
	"es": spanish,
	"fr": french,
	"de": german,
	"it": italian,
}
