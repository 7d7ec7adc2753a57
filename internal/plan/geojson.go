package plan

import (
	"fmt"

	"droneplan/internal/model"
)

var dronePalette = [10]string{
	"#0000FF", "#00FF00", "#FF00FF", "#00FFFF", "#FFA500",
	"#FFD700", "#FF1493", "#00CED1", "#9370DB", "#32CD32",
}

// ColorForDrone assigns each drone path a stroke colour, cycling through
// the palette.
func ColorForDrone(index int) string {
	return dronePalette[index%len(dronePalette)]
}

// RenderGeoJSON flattens a delivery plan into a FeatureCollection with
// one LineString per drone, suitable for dropping onto a map. An empty
// plan renders as an empty collection.
func RenderGeoJSON(p model.DeliveryPlan) model.FeatureCollection {
	fc := model.FeatureCollection{Type: "FeatureCollection", Features: []model.Feature{}}
	for i, dp := range p.DronePaths {
		var coords [][2]float64
		for _, d := range dp.Deliveries {
			for _, pos := range d.FlightPath {
				coords = append(coords, [2]float64{pos.Lng, pos.Lat})
			}
		}
		if len(coords) == 0 {
			continue
		}
		fc.Features = append(fc.Features, model.Feature{
			Type: "Feature",
			Geometry: model.Geometry{
				Type:        "LineString",
				Coordinates: coords,
			},
			Properties: map[string]any{
				"name":           fmt.Sprintf("Drone %d Path", i+1),
				"droneId":        dp.DroneID,
				"stroke":         ColorForDrone(i),
				"stroke-width":   3,
				"stroke-opacity": 0.8,
			},
		})
	}
	return fc
}
