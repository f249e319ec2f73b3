package database

import (
	"database/sql"
	"fmt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	token_version INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS profiles (
	user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
	username TEXT NOT NULL,
	is_premium INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS categories (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	icon TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS recipes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	country TEXT NOT NULL DEFAULT '',
	region TEXT,
	description TEXT NOT NULL DEFAULT '',
	image_url TEXT,
	preparation_time INTEGER NOT NULL DEFAULT 0,
	cooking_time INTEGER NOT NULL DEFAULT 0,
	difficulty TEXT,
	servings INTEGER NOT NULL DEFAULT 4,
	is_premium INTEGER NOT NULL DEFAULT 0,
	category_id INTEGER REFERENCES categories(id),
	story_intro TEXT,
	latitude REAL,
	longitude REAL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS ingredients (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	quantity TEXT NOT NULL DEFAULT '',
	unit TEXT
);
CREATE INDEX IF NOT EXISTS idx_ingredients_recipe ON ingredients(recipe_id);

CREATE TABLE IF NOT EXISTS steps (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	order_number INTEGER NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL,
	story_content TEXT
);
CREATE INDEX IF NOT EXISTS idx_steps_recipe ON steps(recipe_id, order_number);

CREATE TABLE IF NOT EXISTS inspirations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS favorite_recipes (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (user_id, recipe_id)
);

CREATE TABLE IF NOT EXISTS shopping_lists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	total_recipes INTEGER NOT NULL DEFAULT 0,
	servings INTEGER NOT NULL DEFAULT 0,
	recipe_ids TEXT NOT NULL DEFAULT '[]',
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_shopping_lists_user ON shopping_lists(user_id);

CREATE TABLE IF NOT EXISTS shopping_list_items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	shopping_list_id INTEGER NOT NULL REFERENCES shopping_lists(id) ON DELETE CASCADE,
	name TEXT NOT NULL,
	quantity TEXT NOT NULL DEFAULT '',
	unit TEXT,
	category TEXT NOT NULL DEFAULT '',
	is_checked INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_shopping_list_items_list ON shopping_list_items(shopping_list_id);
`

func Migrate(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
