// Package schema lists the storefront tables in creation order for each
// supported dialect.
package schema

// Table is one CREATE TABLE statement keyed by table name.
type Table struct {
	Name string
	DDL  string
}

// Dialect bundles the statements needed to bootstrap a database.
type Dialect struct {
	Name       string
	Extensions []string
	Tables     []Table
}

// TableNames returns the table names in creation order.
func (d Dialect) TableNames() []string {
	names := make([]string, 0, len(d.Tables))
	for _, t := range d.Tables {
		names = append(names, t.Name)
	}
	return names
}

var Postgres = Dialect{
	Name:       "postgres",
	Extensions: []string{`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`},
	Tables: []Table{
		{Name: "categories", DDL: `CREATE TABLE categories (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name VARCHAR(255) NOT NULL,
  slug VARCHAR(255) NOT NULL UNIQUE,
  description TEXT,
  image_url VARCHAR(255),
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "products", DDL: `CREATE TABLE products (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  name VARCHAR(255) NOT NULL,
  slug VARCHAR(255) NOT NULL UNIQUE,
  description TEXT,
  price DECIMAL(10, 2) NOT NULL,
  price_usd DECIMAL(10, 2) NOT NULL,
  weight DECIMAL(10, 2) NOT NULL,
  purity VARCHAR(50) NOT NULL,
  dimensions VARCHAR(100),
  image_url VARCHAR(255) NOT NULL,
  thumbnail_url VARCHAR(255),
  category_id UUID NOT NULL,
  featured BOOLEAN DEFAULT false,
  in_stock BOOLEAN DEFAULT true,
  has_certificate BOOLEAN DEFAULT false,
  serial_number VARCHAR(100),
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "product_images", DDL: `CREATE TABLE product_images (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  product_id UUID NOT NULL,
  image_url VARCHAR(255) NOT NULL,
  alt_text VARCHAR(255),
  display_order INTEGER DEFAULT 0,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "gold_prices", DDL: `CREATE TABLE gold_prices (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  price_usd DECIMAL(10, 2) NOT NULL,
  price_myr_per_gram DECIMAL(10, 2) NOT NULL,
  timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  source VARCHAR(50) DEFAULT 'system'
)`},
		{Name: "users", DDL: `CREATE TABLE users (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  email VARCHAR(255) NOT NULL UNIQUE,
  first_name VARCHAR(100),
  last_name VARCHAR(100),
  phone VARCHAR(50),
  auth_id VARCHAR(255),
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "addresses", DDL: `CREATE TABLE addresses (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id UUID NOT NULL,
  address_line1 VARCHAR(255) NOT NULL,
  address_line2 VARCHAR(255),
  city VARCHAR(100) NOT NULL,
  state VARCHAR(100) NOT NULL,
  postal_code VARCHAR(20) NOT NULL,
  country VARCHAR(100) NOT NULL,
  is_default BOOLEAN DEFAULT false,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "orders", DDL: `CREATE TABLE orders (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id UUID NOT NULL,
  order_number VARCHAR(50) NOT NULL UNIQUE,
  status VARCHAR(50) NOT NULL DEFAULT 'pending',
  subtotal DECIMAL(10, 2) NOT NULL,
  shipping_fee DECIMAL(10, 2) NOT NULL DEFAULT 0,
  tax DECIMAL(10, 2) NOT NULL DEFAULT 0,
  total DECIMAL(10, 2) NOT NULL,
  shipping_address_id UUID NOT NULL,
  billing_address_id UUID NOT NULL,
  payment_method VARCHAR(50),
  payment_id VARCHAR(255),
  payment_status VARCHAR(50) DEFAULT 'pending',
  notes TEXT,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
		{Name: "order_items", DDL: `CREATE TABLE order_items (
  id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
  order_id UUID NOT NULL,
  product_id UUID NOT NULL,
  quantity INTEGER NOT NULL,
  price DECIMAL(10, 2) NOT NULL,
  total DECIMAL(10, 2) NOT NULL,
  created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
)`},
	},
}

// SQLite mirrors Postgres for local runs and tests; ids are assigned by the models.
var SQLite = Dialect{
	Name: "sqlite",
	Tables: []Table{
		{Name: "categories", DDL: `CREATE TABLE categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "products", DDL: `CREATE TABLE products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  slug TEXT NOT NULL UNIQUE,
  description TEXT,
  price NUMERIC NOT NULL,
  price_usd NUMERIC NOT NULL,
  weight NUMERIC NOT NULL,
  purity TEXT NOT NULL,
  dimensions TEXT,
  image_url TEXT NOT NULL,
  thumbnail_url TEXT,
  category_id TEXT NOT NULL,
  featured BOOLEAN NOT NULL DEFAULT 0,
  in_stock BOOLEAN NOT NULL DEFAULT 1,
  has_certificate BOOLEAN NOT NULL DEFAULT 0,
  serial_number TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "product_images", DDL: `CREATE TABLE product_images (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  image_url TEXT NOT NULL,
  alt_text TEXT,
  display_order INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "gold_prices", DDL: `CREATE TABLE gold_prices (
  id TEXT PRIMARY KEY,
  price_usd NUMERIC NOT NULL,
  price_myr_per_gram NUMERIC NOT NULL,
  timestamp DATETIME NOT NULL,
  source TEXT NOT NULL DEFAULT 'system'
)`},
		{Name: "users", DDL: `CREATE TABLE users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  first_name TEXT,
  last_name TEXT,
  phone TEXT,
  auth_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "addresses", DDL: `CREATE TABLE addresses (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  address_line1 TEXT NOT NULL,
  address_line2 TEXT,
  city TEXT NOT NULL,
  state TEXT NOT NULL,
  postal_code TEXT NOT NULL,
  country TEXT NOT NULL,
  is_default BOOLEAN NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "orders", DDL: `CREATE TABLE orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_number TEXT NOT NULL UNIQUE,
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal NUMERIC NOT NULL,
  shipping_fee NUMERIC NOT NULL DEFAULT 0,
  tax NUMERIC NOT NULL DEFAULT 0,
  total NUMERIC NOT NULL,
  shipping_address_id TEXT NOT NULL,
  billing_address_id TEXT NOT NULL,
  payment_method TEXT,
  payment_id TEXT,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
)`},
		{Name: "order_items", DDL: `CREATE TABLE order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
)`},
	},
}

// For returns the dialect matching a gorm dialector name.
func For(name string) Dialect {
	if name == SQLite.Name {
		return SQLite
	}
	return Postgres
}
