package db

type Course struct {
	RunID  int64
	Number string
	Data   string
}

type Fce struct {
	ID    int64
	RunID int64
	Data  string
}

type Run struct {
	ID        int64
	Semester  string
	Rundate   string
	CreatedAt int64
}
