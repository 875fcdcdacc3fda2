package main

import "Gin_postgres_redis_device_inventory/cmd"

func main() {
	cmd.Execute()
}
