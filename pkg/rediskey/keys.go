package rediskey

const Version = "pianobot:version"
const Commit = "pianobot:commit"

const SchedulerLock = "pianobot:scheduler:lock"

func TaskRuns(task string) string {
	return "pianobot:tasks:runs:" + task
}

func TaskErrors(task string) string {
	return "pianobot:tasks:errors:" + task
}

func TaskLastRun(task string) string {
	return "pianobot:tasks:lastrun:" + task
}

func TaskLastDurationMs(task string) string {
	return "pianobot:tasks:duration:" + task
}

func APIPayload(resource string) string {
	return "pianobot:api:cache:" + resource
}

const SquadQueueDropped = "pianobot:squads:dropped"
