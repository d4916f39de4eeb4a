package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type WallTag struct{}

var WallTagComponent = NewComponent[WallTag]()

// Name lets level logic address an entity, e.g. a switch naming its doors.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
