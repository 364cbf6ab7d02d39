package tpl

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ardnew/neutral/value"
)

const testSchema = `{
    "config": {
        "infinite_loop_max_bifs": 555000,
        "comments": "remove"
    },
    "inherit": {
        "declare": {
            "_test-nts": "en es fr de nts",
            "_test-nts-empty": "~ nts en es fr de",
            "_test-nts-asterisk": "*en* nts es fr de",
            "_test-nts-question": "en?nts nts es fr de",
            "_test-nts-dot": "en.nts es fr de"
        }
    },
    "data": {
        "__test-local": "local",
        "__test-nts": "nts",
        "__test-empty-nts": "",
        "__test-null-nts": null,
        "__test-zero-nts": 0,
        "__test-bool-true-string-nts": true,
        "__test-bool-false-string-nts": false,
        "__test-arr-nts": ["one", "two", "three"],
        "__test-arr-empty-nts": [],
        "__test-obj-empty-nts": {},
        "__test-obj-nts": {
            "level1": "Ok",
            "level1-obj": {
                "level1": "Ok",
                "level2-obj": {
                    "level2": "Ok",
                    "level3-arr": ["one", "two", "three"]
                }
            }
        }
    }
}`

// newTestTemplate returns a Template over src with the test schema and any
// extra JSON schemas merged in order.
func newTestTemplate(t *testing.T, src string, schemas ...string) *Template {
	t.Helper()

	tp, err := New(WithSource(src))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, s := range append([]string{testSchema}, schemas...) {
		if err := tp.MergeSchemaJSON([]byte(s)); err != nil {
			t.Fatalf("MergeSchemaJSON: %v", err)
		}
	}

	return tp
}

type renderCase struct {
	name    string
	src     string
	schema  string
	want    string
	wantErr bool
}

func runRenderCases(t *testing.T, tests []renderCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var extra []string
			if tt.schema != "" {
				extra = append(extra, tt.schema)
			}

			tp := newTestTemplate(t, tt.src, extra...)

			if got := tp.Render(t.Context()); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}

			if got := tp.HasError(); got != tt.wantErr {
				t.Errorf("HasError() = %v, want %v; errors: %q", got, tt.wantErr, tp.Errors())
			}
		})
	}
}

const langEl = `{"inherit":{"locale":{"current":"el"}}}`

func TestRender_Basics(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "text only", src: "  <div>plain</div>  ", want: "<div>plain</div>"},
		{name: "neutral", src: "<div>{:neutral; template >> system :}</div>", want: "<div>{:neutral; template >> system :}</div>"},
		{name: "unknown", src: "<div>{:unk;:}</div>", want: "<div></div>", wantErr: true},
		{name: "comment", src: "<div>{:* comment *:}</div>", want: "<div></div>"},
		{name: "comment nested", src: "<div>{:* a {:* b *:} c *:}</div>", want: "<div></div>"},
		{name: "comment kept", src: "<div>{:* comment *:}</div>", schema: `{"config":{"comments":"keep"}}`, want: "<div></div>"},
		{name: "unprintable", src: "<div>{:;:}</div>", want: "<div></div>"},
		{name: "unprintable spaces", src: "<div> {:;:} </div>", want: "<div>  </div>"},
		{name: "unprintable upline", src: "|  \n  {:^;:}<div></div>", want: "|<div></div>"},
		{name: "unprintable comment", src: "{:; {:* comment *:} :}<div></div>", want: "<div></div>"},
		{name: "var", src: "<div>{:;__test-nts:}</div>", want: "<div>nts</div>"},
		{name: "var array", src: "<div>{:;__test-obj-nts->level1-obj->level2-obj->level3-arr->0:}</div>", want: "<div>one</div>"},
		{name: "var number", src: "<div>{:;__test-zero-nts:}</div>", want: "<div>0</div>"},
		{name: "var object", src: "<div>{:;__test-obj-nts:}</div>", want: "<div></div>"},
		{name: "var dynamic", src: "<div>{:;__hello-{:;__test-nts:}:}</div>", want: "<div>Hello nts</div>"},
		{name: "var insecure", src: "<div>{:;{:;__ref-hello-nts:}:}</div>", want: "<div></div>", wantErr: true},
		{name: "var undefined", src: "<div>{:;__dfhs76tfwq65dhtw563hjknv__:}</div>", want: "<div></div>"},
		{name: "var upline", src: "|  \n  {:^;__test-nts:}<div></div>", want: "|nts<div></div>"},
		{name: "var negate", src: "<div>{:!;__test-nts:}</div>", want: "<div></div>", wantErr: true},
		{name: "var scope", src: "<div>{:+;__test-nts:}</div>", want: "<div></div>", wantErr: true},
		{name: "var filter", src: "<div>{:&;__test-nts:}</div>", want: "<div></div>", wantErr: true},
		{name: "missing name separator", src: "<div>{:code:}</div>", want: "<div></div>", wantErr: true},
		{name: "flg alone", src: "<div>{:flg; any :}</div>", want: "<div></div>"},
		{name: "flg upline", src: "<div>{:^flg; any :}</div>", want: "<div></div>", wantErr: true},
	})
}

func TestRender_Trans(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "trans", src: "<div>{:trans; Hello nts :}</div>", schema: langEl, want: "<div>Γεια σας</div>"},
		{name: "trans dynamic", src: "<div>{:trans; {:;__hello-nts:} :}</div>", schema: langEl, want: "<div>Γεια σας</div>"},
		{name: "no trans", src: "<div>{:trans; no __translation__ :}</div>", schema: langEl, want: "<div>no __translation__</div>"},
		{name: "no trans negate", src: "<div>{:!trans; no __translation__ :}</div>", schema: langEl, want: "<div></div>"},
		{name: "negate", src: "<div>{:!trans; Hello nts :}</div>", schema: langEl, want: "<div>Γεια σας</div>"},
		{name: "scope", src: "<div>{:+trans; Hello nts :}</div>", schema: langEl, want: "<div></div>", wantErr: true},
		{name: "lang", src: "<div>{:lang;:}</div>", schema: langEl, want: "<div>el</div>"},
		{name: "lang comment", src: "<div>{:lang; {:* comment *:} :}</div>", schema: langEl, want: "<div>el</div>"},
		{name: "lang negate", src: "<div>{:!lang;:}</div>", schema: langEl, want: "<div></div>", wantErr: true},
		{name: "default snippet", src: "{:snippet; __hello-nts :}", schema: `{"inherit":{"locale":{"current":"fr"}}}`, want: "<div>Bonjour</div>"},
	})
}

func TestRender_Code(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "empty", src: "<div>{:code; :}</div>", want: "<div></div>"},
		{name: "literal", src: "<div>{:code; Hello :}</div>", want: "<div>Hello</div>"},
		{name: "evaluation", src: "<div>{:code; {:;__test-nts:} :}</div>", want: "<div>nts</div>"},
		{
			name: "safe",
			src:  "<div>{:code; {:flg; safe :} >> <div>{:;__test-nts:}</div> :}</div>",
			want: "<div>&lt;div&gt;&#123;:;__test-nts:&#125;&lt;&#x2F;div&gt;</div>",
		},
		{
			name: "encode_tags",
			src:  "<div>{:code; {:flg; encode_tags :} >> <div>{:;__test-nts:}</div> :}</div>",
			want: "<div>&lt;div&gt;nts&lt;&#x2F;div&gt;</div>",
		},
		{
			name: "noparse",
			src:  "<div>{:code; {:flg; noparse :} >> <div>{:;__test-nts:}</div> :}</div>",
			want: "<div><div>{:;__test-nts:}</div></div>",
		},
		{
			name: "encode_tags_after",
			src:  "<div>{:code; {:flg; encode_tags_after :} >> <b>{:;__test-nts:}</b> :}</div>",
			want: "<div>&lt;b&gt;nts&lt;&#x2F;b&gt;</div>",
		},
		{name: "negate", src: "<div>{:!code; x :}</div>", want: "<div></div>", wantErr: true},
		{name: "param", src: "<div>{:code; {:param; 1 >> one :} {:param; 1 :} :}</div>", want: "<div>one</div>"},
		{name: "param outside code", src: "<div>{:param; 1 >> one :}{:param; 1 :}</div>", want: "<div></div>", wantErr: true},
		{
			name: "param evaluation",
			src:  "<div>{:code; {:param; {:;__test-nts:} >> {:;__test-nts:} :} {:param; {:;__test-nts:} :} :}</div>",
			want: "<div>nts</div>",
		},
		{name: "param nested code", src: "<div>{:code; {:param; 1 >> one :} {:code; {:param; 1 :} :} :}</div>", want: "<div>one</div>"},
		{
			name: "param released",
			src:  "<div>{:code; {:param; 1 >> one :} :}{:param; 1 :}</div>",
			want: "<div></div>",
		},
	})
}

func TestRender_Allow(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "allow", src: "<div>{:allow; _test-nts >> en :}</div>", want: "<div>en</div>"},
		{name: "evaluate", src: "<div>{:allow; _test-{:;__test-nts:} >> {:;__test-nts:} :}</div>", want: "<div>nts</div>"},
		{name: "fails", src: "<div>{:allow; _test-nts >> notallow :}</div>", want: "<div></div>"},
		{name: "negate", src: "<div>{:!allow; traversal >> is not traversal :}</div>", want: "<div>is not traversal</div>"},
		{name: "negate fails", src: "<div>{:!allow; traversal >> ../istraversal :}</div>", want: "<div></div>"},
		{name: "any", src: "<div>{:allow; any >> something :}</div>", want: "<div>something</div>"},
		{name: "empty", src: "<div>{:allow; _test-nts-empty >>  :}</div>", want: "<div></div>"},
		{name: "asterisk", src: "<div>{:allow; _test-nts-asterisk >> en-nts :}</div>", want: "<div>en-nts</div>"},
		{name: "asterisk fails", src: "<div>{:allow; _test-nts-asterisk >> not :}</div>", want: "<div></div>"},
		{name: "dot 1", src: "<div>{:allow; _test-nts-dot >> ennts :}</div>", want: "<div>ennts</div>"},
		{name: "dot 2", src: "<div>{:allow; _test-nts-dot >> en-nts :}</div>", want: "<div>en-nts</div>"},
		{name: "dot fails", src: "<div>{:allow; _test-nts-dot >> not :}</div>", want: "<div></div>"},
		{name: "question", src: "<div>{:allow; _test-nts-question >> en-nts :}</div>", want: "<div>en-nts</div>"},
		{name: "question fails", src: "<div>{:allow; _test-nts-question >> ennts :}</div>", want: "<div></div>"},
		{name: "scope", src: "<div>{:+allow; _test-nts >> notallow :}</div>", want: "<div></div>", wantErr: true},
		{name: "partial", src: "<div>{:allow;{:flg; partial :} _test-nts >> nts and more :}</div>", want: "<div>nts and more</div>"},
		{name: "casein", src: "<div>{:allow;{:flg; casein :} _test-nts >> NTS :}</div>", want: "<div>NTS</div>"},
		{name: "replace", src: "<div>{:allow;{:flg; replace :} _test-nts >> nts and more :}</div>", want: "<div>nts</div>"},
		{name: "noerror", src: "<div>{:allow;{:flg; noerror :} _test-nts >> nts and more :}</div>", want: "<div></div>"},
		{name: "multi flags", src: "<div>{:allow; {:flg; casein replace :} _test-nts >> NTS :}</div>", want: "<div>nts</div>"},
		{name: "undeclared", src: "<div>{:allow; nothing >> x :}</div>", want: "<div></div>", wantErr: true},
		{name: "undeclared noerror", src: "<div>{:allow; {:flg; noerror :} nothing >> x :}</div>", want: "<div></div>"},
	})
}

func TestRender_Conditions(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "filled", src: "<div>{:filled; __test-nts >> is filled :}</div>", want: "<div>is filled</div>"},
		{
			name: "filled levels",
			src:  "<div>{:filled; __test-obj-nts->level1-obj->level2-obj->level2 >> {:;__test-obj-nts->level1-obj->level2-obj->level2:} :}</div>",
			want: "<div>Ok</div>",
		},
		{name: "filled evaluate", src: "<div>{:filled; __test-{:;__test-nts:} >> {:;__test-nts:} :}</div>", want: "<div>nts</div>"},
		{name: "not filled", src: "<div>{:!filled; __test-empty-nts >> empty :}</div>", want: "<div>empty</div>"},
		{name: "not filled undefined", src: "<div>{:!filled; undefined-var >> empty :}</div>", want: "<div>empty</div>"},
		{name: "not filled object", src: "<div>{:!filled; __test-obj-empty-nts >> empty :}</div>", want: "<div>empty</div>"},
		{name: "not filled array", src: "<div>{:!filled; __test-arr-empty-nts >> empty :}</div>", want: "<div>empty</div>"},
		{name: "not filled null", src: "<div>{:!filled; __test-null-nts >> empty :}</div>", want: "<div>empty</div>"},
		{name: "filled zero", src: "<div>{:filled; __test-zero-nts >> zero :}</div>", want: "<div>zero</div>"},
		{name: "filled false", src: "<div>{:filled; __test-bool-false-string-nts >> false :}</div>", want: "<div>false</div>"},
		{name: "bool", src: "<div>{:bool; __test-nts >> nts :}</div>", want: "<div>nts</div>"},
		{name: "bool false", src: "<div>{:bool; __test-bool-false-string-nts >> nts :}</div>", want: "<div></div>"},
		{name: "bool true", src: "<div>{:bool; __test-bool-true-string-nts >> nts :}</div>", want: "<div>nts</div>"},
		{name: "bool zero", src: "<div>{:bool; __test-zero-nts >> nts :}</div>", want: "<div></div>"},
		{name: "bool empty object", src: "<div>{:bool; __test-obj-empty-nts >> nts :}</div>", want: "<div></div>"},
		{name: "not bool empty array", src: "<div>{:!bool; __test-arr-empty-nts >> nts :}</div>", want: "<div>nts</div>"},
		{name: "not bool undefined", src: "<div>{:!bool; undefined-var >> nts :}</div>", want: "<div>nts</div>"},
		{name: "array", src: "<div>{:array; __test-obj-nts >> nts :}</div>", want: "<div>nts</div>"},
		{name: "array empty", src: "<div>{:array; __test-arr-empty-nts >> nts :}</div>", want: "<div>nts</div>"},
		{name: "array null", src: "<div>{:array; __test-null-nts >> nts :}</div>", want: "<div></div>"},
		{name: "not array", src: "<div>{:!array; __test-obj-nts >> nts :}</div>", want: "<div></div>"},
		{name: "not array undefined", src: "<div>{:!array; undefined-var >> nts :}</div>", want: "<div>nts</div>"},
		{name: "defined", src: "<div>{:defined; __test-empty-nts >> yes :}</div>", want: "<div>yes</div>"},
		{name: "defined null", src: "<div>{:defined; __test-null-nts >> yes :}</div>", want: "<div></div>"},
		{name: "not defined", src: "<div>{:!defined; nothing >> no :}</div>", want: "<div>no</div>"},
		{name: "filled negate scope", src: "<div>{:&filled; __test-nts >> x :}</div>", want: "<div></div>", wantErr: true},
		{name: "else", src: "<div>{:code; :}{:else; nts :}</div>", want: "<div>nts</div>"},
		{name: "else skipped", src: "<div>{:code; 1 :}{:else; nts :}</div>", want: "<div>1</div>"},
		{name: "else negate", src: "<div>{:code; 1 :}{:!else; nts :}</div>", want: "<div>1nts</div>"},
		{name: "else after filled", src: "<div>{:filled; nothing >> x :}{:else; empty :}</div>", want: "<div>empty</div>"},
	})
}

func TestRender_Loops(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "for", src: "<div>{:for; n 0 9 >> {:;n:} :}</div>", want: "<div>0123456789</div>"},
		{name: "for reverse", src: "<div>{:for; n 9 0 >> {:;n:} :}</div>", want: "<div>9876543210</div>"},
		{name: "for range", src: "<div>{:for; n 1..3 >> {:;n:} :}</div>", want: "<div>123</div>"},
		{name: "for single", src: "<div>{:for; n 5..5 >> {:;n:} :}</div>", want: "<div>5</div>"},
		{name: "for restores", src: "<div>{:for; n 1..2 >> x :}{:;n:}</div>", want: "<div>xx</div>"},
		{name: "for shadows", src: "<div>{:for; __test-nts 1..2 >> {:;__test-nts:} :}{:;__test-nts:}</div>", want: "<div>12nts</div>"},
		{name: "for not numbers", src: "<div>{:for; n a b >> {:;n:} :}</div>", want: "<div></div>", wantErr: true},
		{name: "for no to", src: "<div>{:for; n a >> {:;n:} :}</div>", want: "<div></div>", wantErr: true},
		{name: "for no from", src: "<div>{:for; n >> {:;n:} :}</div>", want: "<div></div>", wantErr: true},
		{name: "for no args", src: "<div>{:for; >> {:;n:} :}</div>", want: "<div></div>", wantErr: true},
		{name: "for negate", src: "<div>{:!for; n 0 9 >> {:;n:} :}</div>", want: "<div></div>", wantErr: true},
		{
			name: "each array",
			src:  "<div>{:each; __test-obj-nts->level1-obj->level2-obj->level3-arr key value >> {:;key:}={:;value:} :}</div>",
			want: "<div>0=one1=two2=three</div>",
		},
		{
			name: "each object",
			src:  "<div>{:each; __test-obj-nts->level1-obj key value >> {:;key:}, :}</div>",
			want: "<div>level1,level2-obj,</div>",
		},
		{
			name: "each nested value",
			src:  "<div>{:each; __test-obj-nts->level1-obj->level2-obj k v >> {:filled; v->1 >> {:;v->1:} :} :}</div>",
			want: "<div>two</div>",
		},
		{name: "each restores", src: "<div>{:each; __test-arr-nts k v >> . :}{:;k:}{:;v:}</div>", want: "<div>...</div>"},
		{name: "each missing", src: "<div>{:each; nothing k v >> x :}</div>", want: "<div></div>"},
		{name: "each no value", src: "<div>{:each; __test-arr-nts k >> x :}</div>", want: "<div></div>", wantErr: true},
		{name: "eval", src: "<div>{:eval; a >> b :}</div>", want: "<div>b</div>"},
		{name: "eval binding", src: "<div>{:eval; {:;__test-nts:} >> {:;__eval__:} :}</div>", want: "<div>nts</div>"},
		{name: "eval negate", src: "<div>{:!eval; {:;__test-nts:} >> nts :}</div>", want: "<div></div>"},
		{name: "eval negate empty", src: "<div>{:!eval; {:;__test-empty-nts:} >> nts :}</div>", want: "<div>nts</div>"},
		{name: "eval empty", src: "<div>{:eval; {:;__test-empty-nts:} >> nts :}</div>", want: "<div></div>"},
		{name: "count", src: "<div>{:count; c >> 3 :}{:count; c :}{:count; c :}</div>", want: "<div>34</div>"},
		{name: "count not number", src: "<div>{:count; c >> x :}</div>", want: "<div></div>", wantErr: true},
		{name: "count unset", src: "<div>{:count; nothing :}</div>", want: "<div></div>", wantErr: true},
		{name: "count in loop", src: "<div>{:count; c >> 1 :}{:for; i 1..3 >> {:count; c :} :}</div>", want: "<div>123</div>"},
	})
}

func TestRender_Coalesce(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "coalesce", src: "<div>{:coalesce; {:code; :} {:code; this :} {:code; ... :} :}</div>", want: "<div>this</div>"},
		{name: "evaluation", src: "<div>{:coalesce; {:;__test-empty-nts:} {:;__test-nts:} :}</div>", want: "<div>nts</div>"},
		{
			name: "nested",
			src:  "<div>{:coalesce; {:code; :} {:coalesce; {:code; :} {:coalesce; {:code; :} {:code; this :} {:code; ... :} :} {:code; ... :} :} {:code; ... :} :}</div>",
			want: "<div>this</div>",
		},
		{name: "none", src: "<div>{:coalesce; {:code; :} {:;nothing:} :}</div>", want: "<div></div>"},
		{name: "negate", src: "<div>{:!coalesce; {:code; :} {:code; this :} :}</div>", want: "<div></div>", wantErr: true},
		{name: "replace", src: "<div>{:replace; /a/b/ >> acbde :}</div>", want: "<div>bcbde</div>"},
		{name: "replace pipe", src: "<div>{:replace; |a|b| >> acbde :}</div>", want: "<div>bcbde</div>"},
		{name: "replace tilde", src: "<div>{:replace; ~a~b~ >> acbde :}</div>", want: "<div>bcbde</div>"},
		{name: "replace colon", src: "<div>{:replace; :a:b: >> acbde :}</div>", want: "<div>bcbde</div>"},
		{name: "replace evaluation", src: "<div>{:replace; /{:;__test-nts:}/one/ >> Hello {:;__test-nts:} :}</div>", want: "<div>Hello one</div>"},
		{name: "replace bad params", src: "<div>{:replace; a/b >> acbde :}</div>", want: "<div></div>", wantErr: true},
		{name: "replace no params", src: "<div>{:replace; acbde :}</div>", want: "<div></div>", wantErr: true},
	})
}

func TestRender_Status(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		want  string
		code  string
		text  string
		param string
	}{
		{"exit", "<div>{:;__test-nts:}{:exit; :}{:;__test-nts:}</div>", "<div>nts", "200", "OK", ""},
		{"custom", "<div>{:;__test-nts:}{:exit; 1600 :}{:;__test-nts:}</div>", "<div>nts", "1600", "", ""},
		{"custom param", "<div>{:;__test-nts:}{:exit; 1600 >> some :}{:;__test-nts:}</div>", "<div>nts", "1600", "", "some"},
		{"negate", "<div>{:;__test-nts:}{:!exit; :}{:;__test-nts:}</div>", "<div>ntsnts</div>", "200", "OK", ""},
		{"negate 202", "<div>{:;__test-nts:}{:!exit; 202 :}{:;__test-nts:}</div>", "<div>ntsnts</div>", "202", "Accepted", ""},
		{"206", "<div>{:;__test-nts:}{:exit; 206 :}{:;__test-nts:}</div>", "<div>nts", "206", "Partial Content", ""},
		{"301", "<div>{:exit; 301 >> /home :}</div>", "301 Moved Permanently\n/home", "301", "Moved Permanently", "/home"},
		{"308", "<div>{:exit; 308 >> https://example.com/ :}</div>", "308 Permanent Redirect\nhttps://example.com/", "308", "Permanent Redirect", "https://example.com/"},
		{"401", "<div>{:exit; 401 :}</div>", "401 Unauthorized", "401", "Unauthorized", ""},
		{"404", "<div>{:;__test-nts:}{:exit; 404 :}</div>", "404 Not Found", "404", "Not Found", ""},
		{"503", "<div>{:exit; 503 :}</div>", "503 Service Unavailable", "503", "Service Unavailable", ""},
		{"nested exit", "<div>{:code; a {:exit; 403 :} b :}c</div>", "403 Forbidden", "403", "Forbidden", ""},
		{"redirect 302", "<div>{:redirect; 302 >> https://example.com/ :}</div>", "302 Found\nhttps://example.com/", "302", "Found", "https://example.com/"},
		{"redirect 307", "<div>{:redirect; 307 >> /x :}</div>", "307 Temporary Redirect\n/x", "307", "Temporary Redirect", "/x"},
		{"reload top", "<div>{:;__test-nts:}{:redirect; js:reload:top :}{:;__test-nts:}</div>", jsReloadTop, "200", "OK", "js:reload:top"},
		{"reload top param", "<div>{:redirect; js:reload:top >> some :}</div>", jsReloadTop, "200", "OK", "some"},
		{"reload self", "<div>{:redirect; js:reload:self :}</div>", jsReloadSelf, "200", "OK", "js:reload:self"},
		{
			"redirect top", "<div>{:redirect; js:redirect:top >> /next :}</div>",
			"<!DOCTYPE html><script>top.location.href='/next';</script>", "200", "OK", "/next",
		},
		{
			"redirect self", "<div>{:redirect; js:redirect:self >> /next :}</div>",
			"<!DOCTYPE html><script>self.location.href='/next';</script>", "200", "OK", "/next",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestTemplate(t, tt.src)

			if got := tp.Render(t.Context()); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}

			if got := tp.StatusCode(); got != tt.code {
				t.Errorf("StatusCode() = %q, want %q", got, tt.code)
			}

			if got := tp.StatusText(); got != tt.text {
				t.Errorf("StatusText() = %q, want %q", got, tt.text)
			}

			if got := tp.StatusParam(); got != tt.param {
				t.Errorf("StatusParam() = %q, want %q", got, tt.param)
			}

			if tp.HasError() {
				t.Errorf("unexpected errors: %q", tp.Errors())
			}
		})
	}
}

func TestRender_RedirectErrors(t *testing.T) {
	runRenderCases(t, []renderCase{
		{name: "negate", src: "<div>{:;__test-nts:}{:!redirect; js:reload:top :}{:;__test-nts:}</div>", want: "<div>ntsnts</div>", wantErr: true},
		{name: "no url", src: "<div>{:redirect; 301 >> :}x</div>", want: "<div>x</div>", wantErr: true},
		{name: "no js url", src: "<div>{:redirect; js:redirect:top >> :}x</div>", want: "<div>x</div>", wantErr: true},
		{name: "bad code", src: "<div>{:redirect; 404 >> /x :}x</div>", want: "<div>x</div>", wantErr: true},
		{name: "bad type", src: "<div>{:redirect; /x :}x</div>", want: "<div>x</div>", wantErr: true},
	})
}

func TestRender_Errors(t *testing.T) {
	tp := newTestTemplate(t, "<div>{:for; n :}{:allow: none :}</div>")

	if got := tp.Render(t.Context()); got != "<div></div>" {
		t.Errorf("Render() = %q", got)
	}

	want := []string{
		"Error 131 (for) arguments not found  src: {:for; n :}",
		"The delimiter was not found: {:allow: none :}",
	}

	got := tp.Errors()
	if len(got) != len(want) {
		t.Fatalf("Errors() = %q, want %q", got, want)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Errors()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if tp.StatusCode() != "200" {
		t.Errorf("block errors changed the status to %q", tp.StatusCode())
	}
}

func TestRender_ErrorSource(t *testing.T) {
	tp := newTestTemplate(t, "{:;{:;x:}:}")
	tp.Render(t.Context())

	errs := tp.Errors()
	if len(errs) != 1 || errs[0] != "Error 103 (var) insecure varname  src: {:;x:}" {
		t.Errorf("Errors() = %q", errs)
	}
}

func TestRender_Unmatched(t *testing.T) {
	tp := newTestTemplate(t, "<div>{:;__test-nts:} :}</div>")

	if got, want := tp.Render(t.Context()), "500 Internal Server Error"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if got, want := tp.StatusParam(), "Unmatched block at position 21"; got != want {
		t.Errorf("StatusParam() = %q, want %q", got, want)
	}

	if !tp.HasError() {
		t.Error("HasError() = false")
	}
}

func TestRender_LoopGuard(t *testing.T) {
	src := strings.Repeat("{:;__test-nts:}", 6)
	tp := newTestTemplate(t, src, `{"config":{"infinite_loop_max_bifs":5}}`)

	if got, want := tp.Render(t.Context()), "500 Internal Server Error"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if got, want := tp.StatusParam(), "Infinite loop? 5 bifs of 6 max have been created."; got != want {
		t.Errorf("StatusParam() = %q, want %q", got, want)
	}

	if got := tp.Result().Body; got != "" {
		t.Errorf("Body = %q, want empty", got)
	}

	// The ceiling is per pass.
	tp.SetSource(strings.Repeat("{:;__test-nts:}", 5))

	if got := tp.Render(t.Context()); got != strings.Repeat("nts", 5) {
		t.Errorf("second Render() = %q", got)
	}
}

func TestRender_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	tp := newTestTemplate(t, "<div>{:;__test-nts:}</div>")

	if got, want := tp.Render(ctx), "500 Internal Server Error"; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}

	if got, want := tp.StatusParam(), "Render canceled: context canceled"; got != want {
		t.Errorf("StatusParam() = %q, want %q", got, want)
	}
}

func TestRender_MoveTo(t *testing.T) {
	page := "<html><head><title>x</title></head><body><p>x</p></body></html>"

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"head",
			page + "{:moveto; <head >> <script></script> :}",
			"<html><head><script></script><title>x</title></head><body><p>x</p></body></html>",
		},
		{
			"head once",
			page + "{:moveto; <head >> <script></script> :}{:moveto; <head >> <script></script> :}",
			"<html><head><script></script><title>x</title></head><body><p>x</p></body></html>",
		},
		{
			"head ends",
			page + "{:moveto; </head >> <script></script> :}",
			"<html><head><title>x</title><script></script></head><body><p>x</p></body></html>",
		},
		{
			"bare tag",
			page + "{:moveto; body >> <i></i> :}",
			"<html><head><title>x</title></head><body><i></i><p>x</p></body></html>",
		},
		{
			"body ends with bracket",
			page + "{:moveto; </body> >> <i></i> :}",
			"<html><head><title>x</title></head><body><p>x</p><i></i></body></html>",
		},
		{
			"missing tag",
			page + "{:moveto; <aside >> <i></i> :}",
			page,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp := newTestTemplate(t, tt.src)

			if got := tp.Render(t.Context()); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_DateHashRand(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	saved := now
	now = func() time.Time { return fixed }

	t.Cleanup(func() { now = saved })

	runRenderCases(t, []renderCase{
		{name: "timestamp", src: "{:date; :}", want: "1704164645"},
		{name: "date", src: "{:date; %Y-%m-%d %H:%M:%S :}", want: "2024-01-02 03:04:05"},
		{name: "date negate", src: "{:!date; :}", want: "", wantErr: true},
		{name: "hash", src: "{:hash; {:;__test-nts:} :}", want: "5c96e4f24ce6e234e6bd4df066748030"},
		{name: "hash literal", src: "{:hash; Hello nts :}", want: "3450c0e20482d0c040dcbfcdc5401196"},
		{name: "rand single", src: "{:rand; 5..5 :}", want: "5"},
		{name: "rand reversed", src: "{:rand; 9..1 :}", want: "", wantErr: true},
		{name: "rand not number", src: "{:rand; a..9 :}", want: "", wantErr: true},
		{name: "rand no to", src: "{:rand; 1 :}", want: "", wantErr: true},
	})

	for _, src := range []string{"{:rand; :}", "{:hash; :}"} {
		tp := newTestTemplate(t, src)

		out := tp.Render(t.Context())
		if out == "" || tp.HasError() {
			t.Errorf("%s = %q, errors %q", src, out, tp.Errors())
		}
	}

	tp := newTestTemplate(t, "{:rand; 10..99 :}")

	for range 20 {
		n, err := strconv.Atoi(tp.Render(t.Context()))
		if err != nil || n < 10 || n > 99 {
			t.Fatalf("rand 10..99 = %d, %v", n, err)
		}
	}

	tp = newTestTemplate(t, "{:rand; :}")
	if n := tp.Render(t.Context()); len(n) != 9 {
		t.Errorf("rand = %q, want 9 digits", n)
	}
}

func TestRender_WorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	tp := newTestTemplate(t, "{:;CONTEXT->working_dir:}")

	if got := tp.Render(t.Context()); got != wd {
		t.Errorf("working_dir = %q, want %q", got, wd)
	}
}

func TestRender_Rerender(t *testing.T) {
	tp := newTestTemplate(t, "{:count; c >> 1 :}{:count; c :}{:snippet; x :}")

	first := tp.Render(t.Context())
	second := tp.Render(t.Context())

	if first != "1" || second != "1" {
		t.Errorf("renders = %q, %q, want 1, 1", first, second)
	}
}

func TestTemplate_Defaults(t *testing.T) {
	tp, err := New()
	if err != nil {
		t.Fatal(err)
	}

	if tp.StatusCode() != "200" || tp.StatusText() != "OK" || tp.StatusParam() != "" {
		t.Error("unexpected status before render")
	}

	if tp.HasError() || tp.Errors() != nil {
		t.Error("unexpected errors before render")
	}

	if got := tp.Render(t.Context()); got != "" {
		t.Errorf("empty source rendered %q", got)
	}

	r := tp.Result()
	if r.Status != "200" || r.Text != "OK" || r.Output != "" || len(r.Errors) != 0 {
		t.Errorf("Result() = %+v", r)
	}
}

func TestTemplate_MergeSchema(t *testing.T) {
	tp, err := New(WithSource("{:;a:}-{:;b->c:}"))
	if err != nil {
		t.Fatal(err)
	}

	if err := tp.MergeSchemaJSON([]byte(`{"data":{"a":"1","b":{"c":"x"}}}`)); err != nil {
		t.Fatal(err)
	}

	if err := tp.MergeSchemaYAML([]byte("data:\n  b:\n    c: 2\n")); err != nil {
		t.Fatal(err)
	}

	if got := tp.Render(t.Context()); got != "1-2" {
		t.Errorf("Render() = %q, want 1-2", got)
	}

	if err := tp.MergeSchemaJSON([]byte(`[1]`)); !errors.Is(err, ErrSchemaType) {
		t.Errorf("array schema error = %v, want ErrSchemaType", err)
	}

	if err := tp.MergeSchemaJSON([]byte(`{`)); !errors.Is(err, ErrDecodeSchema) {
		t.Errorf("bad JSON error = %v, want ErrDecodeSchema", err)
	}

	if err := tp.MergeSchema(nil); err != nil {
		t.Errorf("MergeSchema(nil) = %v", err)
	}
}

func TestTemplate_SetSchema(t *testing.T) {
	tp, err := New()
	if err != nil {
		t.Fatal(err)
	}

	if err := tp.SetSchema(value.MustParse(`{"data":{"only":"1"}}`)); err != nil {
		t.Fatal(err)
	}

	if got := tp.Schema().Text("data->only"); got != "1" {
		t.Errorf("data.only = %q, want 1", got)
	}

	if tp.Schema().IsDefined("data->__test-nts") {
		t.Error("SetSchema kept the default data")
	}

	if err := tp.SetSchema(value.String("x")); !errors.Is(err, ErrSchemaType) {
		t.Errorf("string schema error = %v, want ErrSchemaType", err)
	}
}

func TestTemplate_MergeSchemaFile(t *testing.T) {
	dir := t.TempDir()

	files := map[string]string{
		"a.json": `{"data":{"a":"json"}}`,
		"b.yaml": "data:\n  b: yaml\n",
		"c.yml":  "data:\n  c: [1, 2]\n",
	}

	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	tp, err := New(WithSource("{:;a:} {:;b:} {:;c->1:}"))
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"a.json", "b.yaml", "c.yml"} {
		if err := tp.MergeSchemaFile(filepath.Join(dir, name)); err != nil {
			t.Fatalf("MergeSchemaFile(%s): %v", name, err)
		}
	}

	if got := tp.Render(t.Context()); got != "json yaml 2" {
		t.Errorf("Render() = %q", got)
	}

	if err := tp.MergeSchemaFile(filepath.Join(dir, "missing.json")); !errors.Is(err, ErrReadSchema) {
		t.Errorf("missing file error = %v, want ErrReadSchema", err)
	}
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "page.ntpl")

	if err := os.WriteFile(path, []byte("<p>{:;name:}</p>\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tp, err := FromFile(path, value.MustParse(`{"data":{"name":"file"}}`))
	if err != nil {
		t.Fatal(err)
	}

	if tp.File() != path {
		t.Errorf("File() = %q", tp.File())
	}

	if got := tp.Render(t.Context()); got != "<p>file</p>" {
		t.Errorf("Render() = %q", got)
	}

	if _, err := FromFile(filepath.Join(dir, "missing.ntpl"), nil); !errors.Is(err, ErrReadSource) {
		t.Errorf("missing file error = %v, want ErrReadSource", err)
	}

	if _, err := New(WithSchema(value.String("x"))); !errors.Is(err, ErrSchemaType) {
		t.Errorf("string schema error = %v, want ErrSchemaType", err)
	}
}

func TestRender_NoCache(t *testing.T) {
	tp, err := New(WithCache(false), WithSource("{:code; {:;a:} :}"))
	if err != nil {
		t.Fatal(err)
	}

	if err := tp.MergeSchemaJSON([]byte(`{"data":{"a":"b"}}`)); err != nil {
		t.Fatal(err)
	}

	if got := tp.Render(t.Context()); got != "b" {
		t.Errorf("Render() = %q, want b", got)
	}
}
