package database

type tableDDL struct {
	name string
	ddl  string
}

var postgresSchema = []tableDDL{
	{"questions", `
		CREATE TABLE IF NOT EXISTS questions (
			id VARCHAR(64) PRIMARY KEY,
			rung INTEGER NOT NULL CHECK (rung BETWEEN 1 AND 10),
			scenario TEXT NOT NULL,
			option_a TEXT NOT NULL DEFAULT '',
			option_b TEXT NOT NULL DEFAULT '',
			option_c TEXT NOT NULL DEFAULT '',
			option_d TEXT NOT NULL DEFAULT '',
			correct_option CHAR(1) NOT NULL,
			teaching_point TEXT NOT NULL DEFAULT '',
			image_refs JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_questions_rung ON questions(rung);
	`},
	{"game_sessions", `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id VARCHAR(64) PRIMARY KEY,
			player_name VARCHAR(255) NOT NULL,
			start_time TIMESTAMPTZ NOT NULL,
			end_time TIMESTAMPTZ,
			final_rung INTEGER NOT NULL DEFAULT 3,
			total_questions INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			wrong_answers INTEGER NOT NULL DEFAULT 0,
			total_time_seconds INTEGER NOT NULL DEFAULT 0,
			final_score INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_leaderboard ON game_sessions(completed, final_rung, total_time_seconds);
	`},
	{"game_answers", `
		CREATE TABLE IF NOT EXISTS game_answers (
			id BIGSERIAL PRIMARY KEY,
			session_id VARCHAR(64) NOT NULL REFERENCES game_sessions(id),
			question_id VARCHAR(64) NOT NULL,
			selected_option VARCHAR(1) NOT NULL,
			is_correct BOOLEAN NOT NULL,
			time_taken_seconds INTEGER NOT NULL,
			rung_at_time INTEGER NOT NULL,
			answered_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_answers_session_id ON game_answers(session_id);
	`},
	{"answer_statistics", `
		CREATE TABLE IF NOT EXISTS answer_statistics (
			question_id VARCHAR(64) PRIMARY KEY,
			option_a_count INTEGER NOT NULL DEFAULT 0,
			option_b_count INTEGER NOT NULL DEFAULT 0,
			option_c_count INTEGER NOT NULL DEFAULT 0,
			option_d_count INTEGER NOT NULL DEFAULT 0,
			total_attempts INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL
		);
	`},
}

var sqliteSchema = []tableDDL{
	{"questions", `
		CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			rung INTEGER NOT NULL CHECK (rung BETWEEN 1 AND 10),
			scenario TEXT NOT NULL,
			option_a TEXT NOT NULL DEFAULT '',
			option_b TEXT NOT NULL DEFAULT '',
			option_c TEXT NOT NULL DEFAULT '',
			option_d TEXT NOT NULL DEFAULT '',
			correct_option TEXT NOT NULL,
			teaching_point TEXT NOT NULL DEFAULT '',
			image_refs TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_questions_rung ON questions(rung);
	`},
	{"game_sessions", `
		CREATE TABLE IF NOT EXISTS game_sessions (
			id TEXT PRIMARY KEY,
			player_name TEXT NOT NULL,
			start_time DATETIME NOT NULL,
			end_time DATETIME,
			final_rung INTEGER NOT NULL DEFAULT 3,
			total_questions INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			wrong_answers INTEGER NOT NULL DEFAULT 0,
			total_time_seconds INTEGER NOT NULL DEFAULT 0,
			final_score INTEGER NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_game_sessions_leaderboard ON game_sessions(completed, final_rung, total_time_seconds);
	`},
	{"game_answers", `
		CREATE TABLE IF NOT EXISTS game_answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES game_sessions(id),
			question_id TEXT NOT NULL,
			selected_option TEXT NOT NULL,
			is_correct BOOLEAN NOT NULL,
			time_taken_seconds INTEGER NOT NULL,
			rung_at_time INTEGER NOT NULL,
			answered_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_game_answers_session_id ON game_answers(session_id);
	`},
	{"answer_statistics", `
		CREATE TABLE IF NOT EXISTS answer_statistics (
			question_id TEXT PRIMARY KEY,
			option_a_count INTEGER NOT NULL DEFAULT 0,
			option_b_count INTEGER NOT NULL DEFAULT 0,
			option_c_count INTEGER NOT NULL DEFAULT 0,
			option_d_count INTEGER NOT NULL DEFAULT 0,
			total_attempts INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME NOT NULL
		);
	`},
}
