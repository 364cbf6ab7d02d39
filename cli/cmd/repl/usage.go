package repl

// usage holds the call form of every named block, shown as a hint while the
// cursor is inside one.
var usage = map[string]string{
	"allow":    "{:allow; [{:flg; partial casein replace noerror :}] words >> text :}",
	"array":    "{:array; key >> code :}",
	"bool":     "{:bool; key >> code :}",
	"coalesce": "{:coalesce; block block ... :}",
	"code":     "{:code; [{:flg; safe noparse encode_tags encode_bifs :} >>] code :}",
	"count":    "{:count; name >> start :} | {:count; name :}",
	"data":     "{:data; [{:flg; require noparse :} >>] #/file.json :}",
	"date":     "{:date; [strftime format] :}",
	"declare":  "{:declare; name >> words :}",
	"defined":  "{:defined; key >> code :}",
	"each":     "{:each; array key value >> code :}",
	"else":     "{:else; code :}",
	"eval":     "{:eval; params >> code with {:;__eval__:} :}",
	"exit":     "{:exit; status [>> param] :}",
	"filled":   "{:filled; key >> code :}",
	"flg":      "{:flg; flag flag ... :}",
	"for":      "{:for; name from to >> code :} | {:for; name from..to >> code :}",
	"hash":     "{:hash; [text] :}",
	"include":  "{:include; [{:flg; require safe noparse :} >>] #/file.ntpl :}",
	"lang":     "{:lang; :}",
	"locale":   "{:locale; [{:flg; require inline noparse :} >>] #/locale.json :}",
	"moveto":   "{:moveto; <tag >> code :}",
	"neutral":  "{:neutral; verbatim :}",
	"param":    "{:param; name >> value :} | {:param; name :}",
	"rand":     "{:rand; [min..max] :}",
	"redirect": "{:redirect; status >> url :} | {:redirect; js:reload:top :}",
	"replace":  "{:replace; /from/to/ >> code :}",
	"snippet":  "{:snippet; [{:flg; static :}] name >> code :} | {:snippet; name :}",
	"trans":    "{:trans; text :}",
}
