package ddl

import (
	"reflect"
	"testing"

	"github.com/tordrt/erdschema/internal/schema"
)

const shopSchema = `
-- enums
CREATE TYPE public.order_status AS ENUM ('pending', 'paid', 'it''s shipped');

/* customers of the shop */
CREATE TABLE IF NOT EXISTS public."customers" (
	id          bigserial PRIMARY KEY,
	email       varchar(255) NOT NULL UNIQUE,
	full_name   text,
	created_at  timestamp with time zone NOT NULL DEFAULT now()
);

CREATE TABLE orders (
	id           bigint GENERATED ALWAYS AS IDENTITY,
	customer_id  bigint NOT NULL,
	status       order_status NOT NULL DEFAULT 'pending',
	total        numeric(12, 2) CHECK (total >= 0),
	tags         text[],
	note         text DEFAULT 'primary key, (not) a clause',
	CONSTRAINT orders_pkey PRIMARY KEY (id),
	CONSTRAINT orders_customer_fk FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE CASCADE
);

CREATE TABLE order_items (
	order_id   bigint REFERENCES orders,
	sku        character varying(64) NOT NULL,
	qty        integer NOT NULL,
	PRIMARY KEY (order_id, sku)
);

CREATE UNIQUE INDEX customers_email_idx ON customers USING btree (lower(email)) INCLUDE (full_name) WHERE (email IS NOT NULL);
CREATE INDEX orders_status_idx ON public.orders (status, created_at);
CREATE INDEX ghost_idx ON ghosts (id);
`

func TestExtractShopSchema(t *testing.T) {
	g := Extract(shopSchema)

	if got := tableNames(g); !reflect.DeepEqual(got, []string{"customers", "orders", "order_items"}) {
		t.Fatalf("tables = %v", got)
	}

	customers := g.Table("customers")
	wantCols := []struct {
		name    string
		typ     string
		pk      bool
		notNull bool
	}{
		{"id", "bigserial", true, true},
		{"email", "varchar(255)", false, true},
		{"full_name", "text", false, false},
		{"created_at", "timestamp with time zone", false, true},
	}
	if len(customers.Columns) != len(wantCols) {
		t.Fatalf("customers has %d columns, want %d", len(customers.Columns), len(wantCols))
	}
	for i, want := range wantCols {
		col := customers.Columns[i]
		if col.Name != want.name || col.Type != want.typ || col.IsPrimaryKey != want.pk || col.IsNotNull != want.notNull {
			t.Errorf("customers.Columns[%d] = %+v, want %+v", i, col, want)
		}
	}

	orders := g.Table("orders")
	if len(orders.Columns) != 6 {
		t.Fatalf("orders has %d columns, want 6", len(orders.Columns))
	}
	if id := orders.Column("id"); !id.IsPrimaryKey || !id.IsNotNull {
		t.Errorf("orders.id should be flagged primary key by the table constraint: %+v", id)
	}
	if note := orders.Column("note"); note.IsPrimaryKey {
		t.Error("keywords inside a default literal must not flag the column")
	}
	if total := orders.Column("total"); total.Type != "numeric(12,2)" {
		t.Errorf("orders.total type = %q", total.Type)
	}
	if tags := orders.Column("tags"); tags.Type != "text[]" {
		t.Errorf("orders.tags type = %q", tags.Type)
	}
	status := orders.Column("status")
	if !status.IsEnum || status.EnumName != "order_status" {
		t.Errorf("orders.status enum flags = %v %q", status.IsEnum, status.EnumName)
	}

	items := g.Table("order_items")
	if sku := items.Column("sku"); sku.Type != "character varying(64)" || !sku.IsPrimaryKey {
		t.Errorf("order_items.sku = %+v", sku)
	}

	wantRels := []string{
		"orders.customer_id->customers.id",
		"order_items.order_id->orders.id",
	}
	if got := relationIDs(g); !reflect.DeepEqual(got, wantRels) {
		t.Errorf("relations = %v, want %v", got, wantRels)
	}

	fk := orders.Column("customer_id")
	if !fk.IsForeignKey || fk.FKTarget == nil || *fk.FKTarget != (schema.ColumnRef{Table: "customers", Column: "id"}) {
		t.Errorf("orders.customer_id foreign key flags = %+v", fk)
	}

	if len(g.Enums) != 1 || !reflect.DeepEqual(g.Enums[0].Values, []string{"pending", "paid", "it's shipped"}) {
		t.Errorf("enums = %+v", g.Enums)
	}

	if len(customers.Indexes) != 1 {
		t.Fatalf("customers has %d indexes, want 1", len(customers.Indexes))
	}
	wantIdx := schema.Index{
		Name:       "customers_email_idx",
		Table:      "customers",
		Unique:     true,
		Method:     "btree",
		Expression: "lower(email)",
		Include:    "full_name",
		Predicate:  "email IS NOT NULL",
	}
	if customers.Indexes[0] != wantIdx {
		t.Errorf("customers index = %+v, want %+v", customers.Indexes[0], wantIdx)
	}
	if len(orders.Indexes) != 1 || orders.Indexes[0].Expression != "status, created_at" {
		t.Errorf("orders indexes = %+v", orders.Indexes)
	}
}

func TestExtractEndToEnd(t *testing.T) {
	g := Extract(`create table a(id bigint primary key); create table b(id bigint primary key, a_id bigint references a(id));`)

	if len(g.Tables) != 2 {
		t.Fatalf("got %d tables, want 2", len(g.Tables))
	}
	want := []schema.Relation{{FromTable: "b", FromColumn: "a_id", ToTable: "a", ToColumn: "id"}}
	if !reflect.DeepEqual(g.Relations, want) {
		t.Errorf("relations = %+v, want %+v", g.Relations, want)
	}
	if g.Relations[0].ID() != "b.a_id->a.id" {
		t.Errorf("relation id = %q", g.Relations[0].ID())
	}
}

func TestExtractColumnCounts(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "type parameters with commas",
			sql:  "create table t (a numeric(10,2), b decimal(5, 1), c int)",
			want: []string{"a", "b", "c"},
		},
		{
			name: "constraints are not columns",
			sql:  "create table t (a int, b int, primary key (a), unique (b), check (a > b), constraint c check (a <> 0))",
			want: []string{"a", "b"},
		},
		{
			name: "mysql inline keys",
			sql:  "CREATE TABLE `t` (`id` int unsigned NOT NULL AUTO_INCREMENT, `key` varchar(64), KEY `idx_key` (`key`), PRIMARY KEY (`id`)) ENGINE=InnoDB",
			want: []string{"id", "key"},
		},
		{
			name: "empty body",
			sql:  "create table t ()",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Extract(tt.sql)
			if len(g.Tables) != 1 {
				t.Fatalf("got %d tables, want 1", len(g.Tables))
			}
			got := []string{}
			for _, col := range g.Tables[0].Columns {
				got = append(got, col.Name)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("columns = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExtractTypes(t *testing.T) {
	tests := []struct {
		def  string
		want string
	}{
		{"c double precision not null", "double precision"},
		{"c timestamp(3) without time zone", "timestamp(3) without time zone"},
		{"c time with time zone", "time with time zone"},
		{"c character varying (40)", "character varying(40)"},
		{"c bit varying(8)", "bit varying(8)"},
		{"c integer[]", "integer[]"},
		{"c varchar(20)[]", "varchar(20)[]"},
		{"c int unsigned", "int unsigned"},
		{"c public.mood", "public.mood"},
		{"c references other", ""},
	}

	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			col, _, ok := parseColumn(tt.def)
			if !ok {
				t.Fatal("parseColumn() rejected the definition")
			}
			if col.Type != tt.want {
				t.Errorf("type = %q, want %q", col.Type, tt.want)
			}
		})
	}
}

func TestExtractRelationResolution(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "omitted target uses primary key",
			sql: `create table users (user_uuid uuid primary key, name text);
			      create table posts (id int primary key, author uuid references users);`,
			want: []string{"posts.author->users.user_uuid"},
		},
		{
			name: "omitted target without primary key defaults to id",
			sql: `create table users (name text);
			      create table posts (author int, foreign key (author) references users);`,
			want: []string{"posts.author->users.id"},
		},
		{
			name: "table-level primary key counts as first primary key",
			sql: `create table users (code text, name text, primary key (code));
			      create table posts (author text references users);`,
			want: []string{"posts.author->users.code"},
		},
		{
			name: "unknown target table dropped",
			sql:  `create table posts (author int references users(id));`,
			want: []string{},
		},
		{
			name: "named column constraint",
			sql: `create table users (id int primary key);
			      create table posts (author int constraint posts_author_fk references public.users (id) on delete set null);`,
			want: []string{"posts.author->users.id"},
		},
		{
			name: "duplicate constraints collapse",
			sql: `create table users (id int primary key);
			      create table posts (author int references users(id), foreign key (author) references users(id));`,
			want: []string{"posts.author->users.id"},
		},
		{
			name: "self reference",
			sql:  `create table nodes (id int primary key, parent_id int references nodes(id));`,
			want: []string{"nodes.parent_id->nodes.id"},
		},
		{
			name: "discovery order across tables",
			sql: `create table a (id int primary key, b_id int references b);
			      create table b (id int primary key, a_id int references a, c_id int);
			      create table c (id int primary key, foreign key (id) references b);`,
			want: []string{"a.b_id->b.id", "b.a_id->a.id", "c.id->b.id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Extract(tt.sql)
			if got := relationIDs(g); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("relations = %v, want %v", got, tt.want)
			}
			for _, rel := range g.Relations {
				if g.Table(rel.FromTable) == nil || g.Table(rel.ToTable) == nil {
					t.Errorf("relation %s references a missing table", rel.ID())
				}
			}
		})
	}
}

func TestExtractEnums(t *testing.T) {
	g := Extract(`CREATE TYPE t AS ENUM('a''b','c');`)
	if len(g.Enums) != 1 {
		t.Fatalf("got %d enums, want 1", len(g.Enums))
	}
	if !reflect.DeepEqual(g.Enums[0].Values, []string{"a'b", "c"}) {
		t.Errorf("values = %q", g.Enums[0].Values)
	}
}

func TestExtractEnumHeuristic(t *testing.T) {
	g := Extract(`create table jobs (
		state job_status,
		kind text,
		payload_type varchar(10),
		prio priority_enum[],
		shape shape_kind,
		payment payment_type
	);`)
	jobs := g.Table("jobs")

	tests := []struct {
		column string
		isEnum bool
	}{
		{"state", true},
		{"kind", false},
		{"payload_type", false},
		{"prio", true},
		{"shape", true},
		{"payment", true},
	}
	for _, tt := range tests {
		col := jobs.Column(tt.column)
		if col.IsEnum != tt.isEnum || col.EnumName != "" {
			t.Errorf("%s: IsEnum=%v EnumName=%q, want %v \"\"", tt.column, col.IsEnum, col.EnumName, tt.isEnum)
		}
	}
}

func TestExtractEnumHeuristicOffWhenEnumsDeclared(t *testing.T) {
	g := Extract(`create type order_status as enum ('pending', 'paid');
create table t (id int primary key, s order_status, k shape_kind, p payment_type);`)
	tbl := g.Table("t")

	if s := tbl.Column("s"); !s.IsEnum || s.EnumName != "order_status" {
		t.Errorf("s: IsEnum=%v EnumName=%q, want declared enum", s.IsEnum, s.EnumName)
	}
	for _, name := range []string{"k", "p"} {
		if col := tbl.Column(name); col.IsEnum || col.EnumName != "" {
			t.Errorf("%s: IsEnum=%v EnumName=%q, want plain column", name, col.IsEnum, col.EnumName)
		}
	}
}

func TestExtractPrimaryKeyImpliesNotNull(t *testing.T) {
	g := Extract(shopSchema + `create table x (a int primary key null, b int, primary key (b));`)
	for _, table := range g.Tables {
		for _, col := range table.Columns {
			if col.IsPrimaryKey && !col.IsNotNull {
				t.Errorf("%s.%s is primary key but nullable", table.Name, col.Name)
			}
		}
	}
}

func TestExtractTolerance(t *testing.T) {
	inputs := []string{
		"",
		"not sql at all ( ( (",
		"create table",
		"create table broken (id int, name text",
		"create table ; create index on",
		"create type e as enum ('unterminated",
		"CREATE INDEX i ON t (a",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			g := Extract(input)
			if g == nil {
				t.Fatal("Extract() returned nil")
			}
			if len(g.Tables) != 0 || len(g.Relations) != 0 {
				t.Errorf("expected an empty graph, got %+v", g)
			}
		})
	}
}

func TestExtractSkipsDuplicateTables(t *testing.T) {
	g := Extract(`create table a (id int); create table a (x int, y int);`)
	if len(g.Tables) != 1 || len(g.Tables[0].Columns) != 1 {
		t.Errorf("expected the first definition of a to win, got %+v", g.Tables)
	}
}

func TestExtractDeterministic(t *testing.T) {
	first := Extract(shopSchema)
	for i := 0; i < 5; i++ {
		if again := Extract(shopSchema); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different graph", i)
		}
	}
}

func tableNames(g *schema.Graph) []string {
	names := []string{}
	for _, table := range g.Tables {
		names = append(names, table.Name)
	}
	return names
}

func relationIDs(g *schema.Graph) []string {
	ids := []string{}
	for _, rel := range g.Relations {
		ids = append(ids, rel.ID())
	}
	return ids
}
