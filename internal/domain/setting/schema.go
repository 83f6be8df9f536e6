package setting

const schema = `
CREATE TABLE IF NOT EXISTS packages (
    name TEXT PRIMARY KEY,
    app_id INTEGER NOT NULL,
    shared_user_id TEXT NOT NULL DEFAULT '',
    run_64bit BOOLEAN NOT NULL DEFAULT 0,
    not_copied BOOLEAN NOT NULL DEFAULT 0,
    install_flags INTEGER NOT NULL DEFAULT 0,
    first_install_time INTEGER NOT NULL,
    last_update_time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_packages_shared_user ON packages(shared_user_id);

CREATE TABLE IF NOT EXISTS user_state (
    package TEXT NOT NULL,
    user_id INTEGER NOT NULL,
    installed BOOLEAN NOT NULL DEFAULT 1,
    hidden BOOLEAN NOT NULL DEFAULT 0,
    launched BOOLEAN NOT NULL DEFAULT 0,
    PRIMARY KEY (package, user_id),
    FOREIGN KEY (package) REFERENCES packages(name) ON DELETE CASCADE
);
`
