package constants

const (
	RegisterVehicle = "register_vehicle"
	UnlistVehicle   = "unlist_vehicle"
	ReserveVehicle  = "reserve_vehicle"
	RunSettlement   = "run_settlement"
)
